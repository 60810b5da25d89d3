package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/symdex"
)

// Run executes the cache list command.
func (c *CacheListCmd) Run(deps *Dependencies) error {
	filter := symdex.CachedShardFilter{}
	if c.Of != "" {
		filter.Source = &c.Of
	}

	shards, err := deps.Cache.FindCachedShards(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", symdex.ErrorMessage(err))
		return err
	}

	if len(shards) == 0 {
		fmt.Fprintln(deps.Stdout, "No cached shards.")
		return nil
	}

	for _, s := range shards {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d bytes  %s  %s\n",
			s.Source, s.Bucket, s.Size, s.ContentHash, s.FetchedAt.Format(time.RFC3339))
	}
	return nil
}

// Run executes the cache purge command.
func (c *CachePurgeCmd) Run(deps *Dependencies) error {
	n, err := deps.Cache.PurgeCachedShards(deps.Ctx, c.Of)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", symdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Purged %d cached shards\n", n)
	return nil
}
