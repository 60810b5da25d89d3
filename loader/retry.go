package loader

import (
	"context"
	"time"

	"github.com/fwojciec/symdex"
)

// AttemptFunc is one attempt at producing a shard.
type AttemptFunc func(ctx context.Context) (*symdex.Shard, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// WithRetry runs attempt until it succeeds, with one retry per entry in
// delays, sleeping for that delay before the retry. It returns the error of
// the last attempt when every attempt fails. ENOTFOUND is permanent and is
// returned without retrying.
func WithRetry(ctx context.Context, id symdex.BucketID, attempt AttemptFunc, logger LogFunc, delays []time.Duration) (*symdex.Shard, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for n := 0; n < maxAttempts; n++ {
		shard, err := attempt(ctx)
		if err == nil {
			return shard, nil
		}
		lastErr = err

		if symdex.ErrorCode(err) == symdex.ENOTFOUND || n >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if logger != nil {
			logger("retry shard %s (attempt %d): %v", id, n+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[n]):
		}
	}

	return nil, lastErr
}
