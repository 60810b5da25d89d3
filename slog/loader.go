package slog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/symdex"
)

// Ensure LoggingShardLoader implements symdex.ShardLoader.
var _ symdex.ShardLoader = (*LoggingShardLoader)(nil)

// LoggingShardLoader wraps a ShardLoader with logging. Every dropped
// record of a loaded shard is logged once as a warning.
type LoggingShardLoader struct {
	next   symdex.ShardLoader
	logger *slog.Logger

	mu       sync.Mutex
	reported map[*symdex.Shard]struct{}
}

// NewLoggingShardLoader creates a new LoggingShardLoader.
func NewLoggingShardLoader(next symdex.ShardLoader, logger *slog.Logger) *LoggingShardLoader {
	return &LoggingShardLoader{
		next:     next,
		logger:   logger,
		reported: make(map[*symdex.Shard]struct{}),
	}
}

// Load delegates to the wrapped loader and logs the operation.
func (l *LoggingShardLoader) Load(ctx context.Context, id symdex.BucketID) (shard *symdex.Shard, err error) {
	defer func(begin time.Time) {
		if err != nil {
			l.logger.Warn("load shard",
				"bucket", id,
				"duration", time.Since(begin),
				"code", symdex.ErrorCode(err),
				"err", err,
			)
			return
		}
		l.logger.Debug("load shard",
			"bucket", id,
			"entries", shard.Len(),
			"diagnostics", len(shard.Diagnostics),
			"duration", time.Since(begin),
		)
		l.reportDiagnostics(shard)
	}(time.Now())
	return l.next.Load(ctx, id)
}

func (l *LoggingShardLoader) reportDiagnostics(shard *symdex.Shard) {
	if len(shard.Diagnostics) == 0 {
		return
	}
	l.mu.Lock()
	_, seen := l.reported[shard]
	l.reported[shard] = struct{}{}
	l.mu.Unlock()
	if seen {
		return
	}
	for _, d := range shard.Diagnostics {
		l.logger.Warn("malformed record",
			"bucket", d.Bucket,
			"index", d.Index,
			"key", d.Key,
			"reason", d.Reason,
		)
	}
}
