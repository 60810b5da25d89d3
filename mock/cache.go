package mock

import (
	"context"

	"github.com/fwojciec/symdex"
)

var _ symdex.ShardCacheService = (*ShardCacheService)(nil)

// ShardCacheService is a mock implementation of symdex.ShardCacheService.
type ShardCacheService struct {
	FindCachedShardsFn  func(ctx context.Context, filter symdex.CachedShardFilter) ([]*symdex.CachedShard, error)
	PurgeCachedShardsFn func(ctx context.Context, source string) (int, error)
}

func (s *ShardCacheService) FindCachedShards(ctx context.Context, filter symdex.CachedShardFilter) ([]*symdex.CachedShard, error) {
	return s.FindCachedShardsFn(ctx, filter)
}

func (s *ShardCacheService) PurgeCachedShards(ctx context.Context, source string) (int, error) {
	return s.PurgeCachedShardsFn(ctx, source)
}
