// Package session drives incremental search over a sharded index for one
// stream of user input. Each dispatched query gets a new generation;
// results computed for an older generation are dropped, so only the latest
// query ever reaches the results callback.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/symdex"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle state of a session's visible result set.
type State int

// Session states.
const (
	Idle State = iota
	Loading
	Ready
	Failed
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Results is a ranked result set for one generation.
type Results struct {
	Generation uint64
	Query      string
	Rows       []symdex.Row
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	State      State
	Generation uint64
	Query      string
	Buckets    []symdex.BucketID
	Rows       []symdex.Row
	Err        error
}

// Session turns query changes into ranked results.
type Session struct {
	// ID identifies the session in logs.
	ID string

	Loader  symdex.ShardLoader
	Router  *symdex.Router
	Matcher *symdex.Matcher
	Ranker  *symdex.Ranker

	// Debounce delays dispatch until input has been quiet this long.
	// Zero dispatches every change immediately.
	Debounce time.Duration

	// OnResultsReady receives the results of the current generation.
	// Callbacks run one at a time and no new generation starts while one
	// runs, so a callback must not call QueryChanged synchronously when
	// Debounce is zero.
	OnResultsReady func(Results)

	// OnSearchFailed receives the error of the current generation when one
	// of its shards could not be loaded. It runs like OnResultsReady.
	OnSearchFailed func(error)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	gen      uint64
	state    State
	query    string
	buckets  []symdex.BucketID
	rows     []symdex.Row
	err      error
	pending  string
	dirty    bool
	timer    *time.Timer
	closed   bool
	delivery sync.Mutex
}

// NewSession returns an idle session loading shards with loader.
func NewSession(loader symdex.ShardLoader) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:      uuid.NewString(),
		Loader:  loader,
		Router:  &symdex.Router{},
		Matcher: &symdex.Matcher{},
		Ranker:  &symdex.Ranker{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// QueryChanged reports new input text. It never blocks on loading; results
// arrive through OnResultsReady or OnSearchFailed.
func (s *Session) QueryChanged(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.Debounce <= 0 {
		s.mu.Unlock()
		s.dispatch(text)
		return
	}

	s.pending = text
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.Debounce, s.flush)
	} else {
		s.timer.Reset(s.Debounce)
	}
	s.mu.Unlock()
}

func (s *Session) flush() {
	s.mu.Lock()
	if s.closed || !s.dirty {
		s.mu.Unlock()
		return
	}
	text := s.pending
	s.dirty = false
	s.mu.Unlock()
	s.dispatch(text)
}

func (s *Session) dispatch(text string) {
	q := s.Matcher.Normalizer.Query(text)

	var ids []symdex.BucketID
	if q != "" {
		ids = s.Router.Route(q)
	}

	// A delivery in progress completes before a newer generation exists.
	s.delivery.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.delivery.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.query = text
	s.buckets = ids
	s.err = nil
	if q == "" {
		s.state = Idle
		s.rows = nil
	} else {
		s.state = Loading
	}
	s.mu.Unlock()
	s.delivery.Unlock()

	if q == "" {
		s.deliver(gen, Idle, Results{Generation: gen, Query: text}, nil)
		return
	}
	go s.search(gen, text, q, ids)
}

func (s *Session) search(gen uint64, text, q string, ids []symdex.BucketID) {
	shards := make([]*symdex.Shard, len(ids))
	g, ctx := errgroup.WithContext(s.ctx)
	for i, id := range ids {
		g.Go(func() error {
			shard, err := s.Loader.Load(ctx, id)
			if err != nil {
				return err
			}
			shards[i] = shard
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.deliver(gen, Failed, Results{}, err)
		return
	}

	rows := s.Ranker.RankNormalized(s.Matcher.MatchNormalized(q, shards), q)
	s.deliver(gen, Ready, Results{Generation: gen, Query: text, Rows: rows}, nil)
}

// deliver publishes the outcome of gen if gen is still current. Deliveries
// are serialized, so once a generation is published no older one can be.
func (s *Session) deliver(gen uint64, state State, res Results, err error) {
	s.delivery.Lock()
	defer s.delivery.Unlock()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.rows = res.Rows
	s.err = err
	s.mu.Unlock()

	if err != nil {
		if s.OnSearchFailed != nil {
			s.OnSearchFailed(err)
		}
		return
	}
	if s.OnResultsReady != nil {
		s.OnResultsReady(res)
	}
}

// Snapshot returns the current state of the session. Its slices are
// copies.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:      s.state,
		Generation: s.gen,
		Query:      s.query,
		Buckets:    slices.Clone(s.buckets),
		Rows:       slices.Clone(s.rows),
		Err:        s.err,
	}
}

// Close stops any pending dispatch. Loads still in flight complete but
// their results are dropped.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
	return nil
}
