package slog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/mock"
	symslog "github.com/fwojciec/symdex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingShardLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("logs load with entry count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		shard := symdex.NewShard("c", []symdex.Entry{
			{Key: "clear", Occurrences: []symdex.Occurrence{{Label: "clear", URL: "a.html"}}},
		})
		inner := &mock.ShardLoader{
			LoadFn: func(ctx context.Context, id symdex.BucketID) (*symdex.Shard, error) {
				return shard, nil
			},
		}

		loader := symslog.NewLoggingShardLoader(inner, debugLogger(&buf))
		got, err := loader.Load(context.Background(), "c")

		require.NoError(t, err)
		assert.Same(t, shard, got)
		output := buf.String()
		assert.Contains(t, output, "load shard")
		assert.Contains(t, output, "bucket=c")
		assert.Contains(t, output, "entries=1")
		assert.Contains(t, output, "diagnostics=0")
	})

	t.Run("logs failure with error code", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ShardLoader{
			LoadFn: func(ctx context.Context, id symdex.BucketID) (*symdex.Shard, error) {
				return nil, symdex.Errorf(symdex.EUNAVAILABLE, "shard c unavailable")
			},
		}

		loader := symslog.NewLoggingShardLoader(inner, debugLogger(&buf))
		_, err := loader.Load(context.Background(), "c")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "code=unavailable")
		assert.Contains(t, output, "err=\"shard c unavailable\"")
	})

	t.Run("reports dropped records once per shard", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		shard := symdex.NewShard("c", []symdex.Entry{
			{Key: "create", Occurrences: []symdex.Occurrence{{Label: "create", URL: "a.html"}}},
			{Key: "clear", Occurrences: []symdex.Occurrence{{Label: "clear", URL: "b.html"}}},
		})
		inner := &mock.ShardLoader{
			LoadFn: func(ctx context.Context, id symdex.BucketID) (*symdex.Shard, error) {
				return shard, nil
			},
		}

		loader := symslog.NewLoggingShardLoader(inner, debugLogger(&buf))
		for range 3 {
			_, err := loader.Load(context.Background(), "c")
			require.NoError(t, err)
		}

		output := buf.String()
		assert.Equal(t, 1, strings.Count(output, "malformed record"))
		assert.Contains(t, output, "key=clear")
		assert.Contains(t, output, "reason=\"key out of order after create\"")
	})
}
