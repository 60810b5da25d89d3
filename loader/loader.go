// Package loader resolves bucket IDs to shards, fetching each shard at most
// once at a time and caching it for the life of the process.
package loader

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/symdex"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Ensure Loader implements symdex.ShardLoader.
var _ symdex.ShardLoader = (*Loader)(nil)

// Loader fetches, decodes and caches shards.
type Loader struct {
	Source  symdex.ShardSource
	Decoder symdex.ShardDecoder

	// RetryDelays are the waits between fetch attempts. A nil slice means a
	// single attempt.
	RetryDelays []time.Duration

	// OnLoad, if set, is called once for every shard entering the cache,
	// before any waiting Load returns it.
	OnLoad func(*symdex.Shard)

	// Logger, if set, receives a line per retry.
	Logger LogFunc

	group singleflight.Group

	mu     sync.RWMutex
	shards map[symdex.BucketID]*symdex.Shard
}

// NewLoader returns a Loader using the default retry delays.
func NewLoader(source symdex.ShardSource, decoder symdex.ShardDecoder) *Loader {
	return &Loader{
		Source:      source,
		Decoder:     decoder,
		RetryDelays: symdex.DefaultRetryDelays(),
	}
}

// Load returns the shard for id. A cached shard is returned immediately.
// Otherwise concurrent callers for the same bucket share one fetch; a caller
// whose context ends stops waiting but the fetch completes for the others.
//
// Returns EUNAVAILABLE when every fetch attempt failed. Nothing is cached on
// failure, so a later Load fetches again. A bucket the source has no file
// for loads as an empty shard.
func (l *Loader) Load(ctx context.Context, id symdex.BucketID) (*symdex.Shard, error) {
	if shard, ok := l.Cached(id); ok {
		return shard, nil
	}

	ch := l.group.DoChan(string(id), func() (any, error) {
		// Another flight may have filled the cache since the check above.
		if shard, ok := l.Cached(id); ok {
			return shard, nil
		}
		return l.fetch(context.WithoutCancel(ctx), id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*symdex.Shard), nil
	}
}

func (l *Loader) fetch(ctx context.Context, id symdex.BucketID) (*symdex.Shard, error) {
	attempts := 0
	shard, err := WithRetry(ctx, id, func(ctx context.Context) (*symdex.Shard, error) {
		attempts++
		data, err := l.Source.FetchShard(ctx, id)
		if err != nil {
			return nil, err
		}
		return l.Decoder.DecodeShard(id, data)
	}, l.Logger, l.RetryDelays)

	switch {
	case symdex.ErrorCode(err) == symdex.ENOTFOUND:
		shard = symdex.NewShard(id, nil)
	case err != nil:
		return nil, symdex.Errorf(symdex.EUNAVAILABLE, "shard %s unavailable after %d attempts: %v", id, attempts, err)
	}

	l.mu.Lock()
	if l.shards == nil {
		l.shards = make(map[symdex.BucketID]*symdex.Shard)
	}
	l.shards[id] = shard
	l.mu.Unlock()

	if l.OnLoad != nil {
		l.OnLoad(shard)
	}
	return shard, nil
}

// LoadAll loads every bucket in ids concurrently. Shards are returned in the
// order of ids. The first failure cancels the wait for the rest.
func (l *Loader) LoadAll(ctx context.Context, ids []symdex.BucketID) ([]*symdex.Shard, error) {
	shards := make([]*symdex.Shard, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			shard, err := l.Load(ctx, id)
			if err != nil {
				return err
			}
			shards[i] = shard
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return shards, nil
}

// Cached returns the cached shard for id without fetching.
func (l *Loader) Cached(id symdex.BucketID) (*symdex.Shard, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	shard, ok := l.shards[id]
	return shard, ok
}

// Evict drops the cached shard for id so the next Load fetches it again.
// A fetch already in flight still completes and caches its result.
func (l *Loader) Evict(id symdex.BucketID) {
	l.mu.Lock()
	delete(l.shards, id)
	l.mu.Unlock()
	l.group.Forget(string(id))
}
