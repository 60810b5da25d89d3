package main

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/doxygen"
	"github.com/fwojciec/symdex/fs"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	ids := make([]symdex.BucketID, 0, len(c.Buckets))
	for _, b := range c.Buckets {
		ids = append(ids, symdex.BucketID(b))
	}
	explicit := len(ids) > 0
	if !explicit {
		ids = deps.Config.Index.Buckets()
		if !deps.Config.Source.Remote() {
			// A directory lists its own buckets, including any outside the alphabet.
			local, err := fs.NewShardSource(deps.Config.Source.Location, deps.Config.Source.Extension).Buckets()
			if err != nil {
				return err
			}
			ids = local
		}
	}

	var checked, entries, dropped, mismatched int
	for _, id := range ids {
		data, err := deps.Source.FetchShard(deps.Ctx, id)
		if symdex.ErrorCode(err) == symdex.ENOTFOUND && !explicit {
			continue
		}
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", id, symdex.ErrorMessage(err))
			return err
		}

		table, err := doxygen.Parse(id, string(data))
		if err != nil {
			fmt.Fprintln(deps.Stdout, symdex.ErrorMessage(err))
			mismatched++
			continue
		}
		shard := table.Shard(id)
		checked++
		entries += shard.Len()
		dropped += len(shard.Diagnostics)

		fmt.Fprintf(deps.Stdout, "%s: %d entries, %d dropped\n", id, shard.Len(), len(shard.Diagnostics))
		for _, d := range shard.Diagnostics {
			fmt.Fprintf(deps.Stdout, "  %s\n", symdex.ErrorMessage(d.Error()))
		}

		if c.RoundTrip {
			var buf bytes.Buffer
			if err := doxygen.Encode(&buf, table.Name, table.Entries); err != nil || !bytes.Equal(buf.Bytes(), data) {
				fmt.Fprintf(deps.Stdout, "  round-trip: differs\n")
				mismatched++
			} else {
				fmt.Fprintf(deps.Stdout, "  round-trip: ok\n")
			}
		}
	}

	fmt.Fprintf(deps.Stdout, "Checked %d shards: %d entries, %d dropped records\n", checked, entries, dropped)

	if dropped > 0 || mismatched > 0 {
		return symdex.Errorf(symdex.EMALFORMED, "%d dropped records, %d invalid shards", dropped, mismatched)
	}
	return nil
}
