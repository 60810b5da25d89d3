package mock

import (
	"context"

	"github.com/fwojciec/symdex"
)

var _ symdex.ShardSource = (*ShardSource)(nil)

// ShardSource is a mock implementation of symdex.ShardSource.
type ShardSource struct {
	FetchShardFn func(ctx context.Context, id symdex.BucketID) ([]byte, error)
}

func (s *ShardSource) FetchShard(ctx context.Context, id symdex.BucketID) ([]byte, error) {
	return s.FetchShardFn(ctx, id)
}

var _ symdex.ShardDecoder = (*ShardDecoder)(nil)

// ShardDecoder is a mock implementation of symdex.ShardDecoder.
type ShardDecoder struct {
	DecodeShardFn func(id symdex.BucketID, data []byte) (*symdex.Shard, error)
}

func (d *ShardDecoder) DecodeShard(id symdex.BucketID, data []byte) (*symdex.Shard, error) {
	return d.DecodeShardFn(id, data)
}

var _ symdex.ShardLoader = (*ShardLoader)(nil)

// ShardLoader is a mock implementation of symdex.ShardLoader.
type ShardLoader struct {
	LoadFn func(ctx context.Context, id symdex.BucketID) (*symdex.Shard, error)
}

func (l *ShardLoader) Load(ctx context.Context, id symdex.BucketID) (*symdex.Shard, error) {
	return l.LoadFn(ctx, id)
}

var _ symdex.ShardWriter = (*ShardWriter)(nil)

// ShardWriter is a mock implementation of symdex.ShardWriter.
type ShardWriter struct {
	SaveShardFn func(ctx context.Context, id symdex.BucketID, data []byte) error
}

func (w *ShardWriter) SaveShard(ctx context.Context, id symdex.BucketID, data []byte) error {
	return w.SaveShardFn(ctx, id, data)
}
