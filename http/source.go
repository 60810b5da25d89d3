// Package http provides an HTTP-based implementation of symdex.ShardSource
// for indexes published alongside generated documentation.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/symdex"
	"golang.org/x/time/rate"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultExtension is the file extension of generated shard files.
const DefaultExtension = ".js"

// Ensure ShardSource implements symdex.ShardSource at compile time.
var _ symdex.ShardSource = (*ShardSource)(nil)

// ShardSource fetches shard files from <base>/<bucket><ext>.
type ShardSource struct {
	base    string
	ext     string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures a ShardSource.
type Option func(*ShardSource)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *ShardSource) {
		s.timeout = d
	}
}

// WithExtension sets the shard file extension. Defaults to ".js".
func WithExtension(ext string) Option {
	return func(s *ShardSource) {
		s.ext = ext
	}
}

// WithRateLimit caps requests per second. Zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(s *ShardSource) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithClient sets the HTTP client. The timeout option is ignored when a
// client is given.
func WithClient(c *http.Client) Option {
	return func(s *ShardSource) {
		s.client = c
	}
}

// NewShardSource creates a ShardSource rooted at base, e.g.
// "https://docs.example.org/html/search".
func NewShardSource(base string, opts ...Option) *ShardSource {
	s := &ShardSource{
		base:    base,
		ext:     DefaultExtension,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{
			Timeout: s.timeout,
		}
	}

	return s
}

// URL returns the location of the shard file for id.
func (s *ShardSource) URL(id symdex.BucketID) (string, error) {
	u, err := url.JoinPath(s.base, string(id)+s.ext)
	if err != nil {
		return "", symdex.Errorf(symdex.EINVALID, "invalid source url %q: %v", s.base, err)
	}
	return u, nil
}

// FetchShard implements symdex.ShardSource. A 404 response returns
// ENOTFOUND; any other non-200 status returns an error.
func (s *ShardSource) FetchShard(ctx context.Context, id symdex.BucketID) ([]byte, error) {
	u, err := s.URL(id)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, symdex.Errorf(symdex.ENOTFOUND, "no shard file at %s", u)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, u)
	}

	return io.ReadAll(resp.Body)
}
