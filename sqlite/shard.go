package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/symdex"
)

// Compile-time interface verification.
var (
	_ symdex.ShardSource       = (*ShardCache)(nil)
	_ symdex.ShardCacheService = (*ShardCacheService)(nil)
)

// ShardCache is a read-through cache in front of another ShardSource.
// Shard files are stored per source location, so one database can serve
// several indexes.
type ShardCache struct {
	db     *DB
	source symdex.ShardSource
	name   string

	// MaxAge is how long a cached file is served before it is fetched
	// again. Zero means cached files never expire.
	MaxAge time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewShardCache returns a ShardCache storing files fetched from source
// under the source name, usually its location.
func NewShardCache(db *DB, source symdex.ShardSource, name string) *ShardCache {
	return &ShardCache{
		db:     db,
		source: source,
		name:   name,
		Now:    time.Now,
	}
}

// FetchShard implements symdex.ShardSource. A cached file is returned
// without contacting the source unless it is older than MaxAge. When an
// expired file cannot be refreshed the stale copy is returned.
func (c *ShardCache) FetchShard(ctx context.Context, id symdex.BucketID) ([]byte, error) {
	var data []byte
	var fetchedAt string
	err := c.db.QueryRowContext(ctx, `
		SELECT data, fetched_at
		FROM shards
		WHERE source = ? AND bucket = ?
	`, c.name, string(id)).Scan(&data, &fetchedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.refresh(ctx, id)
	case err != nil:
		return nil, err
	}

	if c.MaxAge <= 0 {
		return data, nil
	}
	t, err := parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}
	if c.Now().Sub(t) < c.MaxAge {
		return data, nil
	}

	fresh, err := c.refresh(ctx, id)
	if err != nil {
		if symdex.ErrorCode(err) == symdex.ENOTFOUND {
			return nil, err
		}
		return data, nil
	}
	return fresh, nil
}

func (c *ShardCache) refresh(ctx context.Context, id symdex.BucketID) ([]byte, error) {
	data, err := c.source.FetchShard(ctx, id)
	if err != nil {
		if symdex.ErrorCode(err) == symdex.ENOTFOUND {
			_, _ = c.db.ExecContext(ctx, `DELETE FROM shards WHERE source = ? AND bucket = ?`, c.name, string(id))
		}
		return nil, err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO shards (source, bucket, data, size, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, bucket) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, c.name, string(id), data, len(data), hashContent(data), c.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ShardCacheService implements symdex.ShardCacheService using SQLite.
type ShardCacheService struct {
	db *DB
}

// NewShardCacheService creates a new ShardCacheService.
func NewShardCacheService(db *DB) *ShardCacheService {
	return &ShardCacheService{db: db}
}

// FindCachedShards retrieves cached shards matching the filter.
func (s *ShardCacheService) FindCachedShards(ctx context.Context, filter symdex.CachedShardFilter) ([]*symdex.CachedShard, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT source, bucket, size, content_hash, fetched_at FROM shards WHERE 1=1")
	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}
	query.WriteString(" ORDER BY source ASC, bucket ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shards []*symdex.CachedShard
	for rows.Next() {
		var cs symdex.CachedShard
		var bucket, fetchedAt string
		if err := rows.Scan(&cs.Source, &bucket, &cs.Size, &cs.ContentHash, &fetchedAt); err != nil {
			return nil, err
		}
		cs.Bucket = symdex.BucketID(bucket)
		if cs.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return nil, err
		}
		shards = append(shards, &cs)
	}
	return shards, rows.Err()
}

// PurgeCachedShards deletes the cached shards of source, or all of them
// when source is empty.
func (s *ShardCacheService) PurgeCachedShards(ctx context.Context, source string) (int, error) {
	var res sql.Result
	var err error
	if source == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM shards`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM shards WHERE source = ?`, source)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
