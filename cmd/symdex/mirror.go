package main

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/fs"
	"golang.org/x/sync/errgroup"
)

// Run executes the mirror command.
func (c *MirrorCmd) Run(deps *Dependencies) error {
	dir := filepath.Clean(c.Dir)
	store := fs.NewMirrorStore(filepath.Dir(dir), filepath.Base(dir), deps.Config.Source.Extension)

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var saved atomic.Int64
	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(concurrency)
	for _, id := range deps.Config.Index.Buckets() {
		g.Go(func() error {
			data, err := deps.Source.FetchShard(ctx, id)
			if symdex.ErrorCode(err) == symdex.ENOTFOUND {
				return nil
			}
			if err != nil {
				return fmt.Errorf("fetch %s: %w", id, err)
			}
			if err := store.SaveShard(ctx, id, data); err != nil {
				return fmt.Errorf("save %s: %w", id, err)
			}
			saved.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_ = store.Abort()
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	if err := store.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Mirrored %d shards to %s\n", saved.Load(), store.Dir())
	return nil
}
