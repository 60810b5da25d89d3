package symdex

import (
	"context"
	"time"
)

// CachedShard describes a shard file held in a local cache.
type CachedShard struct {
	Source      string    `json:"source"`
	Bucket      BucketID  `json:"bucket"`
	Size        int       `json:"size"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// CachedShardFilter represents a filter for FindCachedShards.
type CachedShardFilter struct {
	Source *string

	Limit  int
	Offset int
}

// ShardCacheService manages cached shard files.
type ShardCacheService interface {
	// FindCachedShards returns cached shards ordered by source then bucket.
	FindCachedShards(ctx context.Context, filter CachedShardFilter) ([]*CachedShard, error)

	// PurgeCachedShards deletes cached shards of a source, or of every
	// source when source is empty. Returns the number deleted.
	PurgeCachedShards(ctx context.Context, source string) (int, error)
}
