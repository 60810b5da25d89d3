// Package slog provides logging decorators for symdex services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/symdex"
)

// Ensure LoggingShardSource implements symdex.ShardSource.
var _ symdex.ShardSource = (*LoggingShardSource)(nil)

// LoggingShardSource wraps a ShardSource with logging.
type LoggingShardSource struct {
	next   symdex.ShardSource
	logger *slog.Logger
}

// NewLoggingShardSource creates a new LoggingShardSource.
func NewLoggingShardSource(next symdex.ShardSource, logger *slog.Logger) *LoggingShardSource {
	return &LoggingShardSource{next: next, logger: logger}
}

// FetchShard delegates to the wrapped source and logs the operation.
func (s *LoggingShardSource) FetchShard(ctx context.Context, id symdex.BucketID) (data []byte, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("fetch shard",
			"bucket", id,
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchShard(ctx, id)
}
