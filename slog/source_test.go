package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/mock"
	symslog "github.com/fwojciec/symdex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingShardSource_FetchShard(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ShardSource{
			FetchShardFn: func(ctx context.Context, id symdex.BucketID) ([]byte, error) {
				return []byte("var searchData=[];"), nil
			},
		}

		source := symslog.NewLoggingShardSource(inner, debugLogger(&buf))
		data, err := source.FetchShard(context.Background(), "all_3")

		require.NoError(t, err)
		assert.Equal(t, "var searchData=[];", string(data))
		output := buf.String()
		assert.Contains(t, output, "fetch shard")
		assert.Contains(t, output, "bucket=all_3")
		assert.Contains(t, output, "bytes=18")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ShardSource{
			FetchShardFn: func(ctx context.Context, id symdex.BucketID) ([]byte, error) {
				return nil, errors.New("network error")
			},
		}

		source := symslog.NewLoggingShardSource(inner, debugLogger(&buf))
		_, err := source.FetchShard(context.Background(), "c")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})

	t.Run("stays quiet above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ShardSource{
			FetchShardFn: func(ctx context.Context, id symdex.BucketID) ([]byte, error) {
				return []byte("x"), nil
			},
		}

		source := symslog.NewLoggingShardSource(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := source.FetchShard(context.Background(), "c")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}
