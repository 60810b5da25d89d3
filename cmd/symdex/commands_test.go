package main_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/symdex"
	main "github.com/fwojciec/symdex/cmd/symdex"
	"github.com/fwojciec/symdex/doxygen"
	"github.com/fwojciec/symdex/fs"
	"github.com/fwojciec/symdex/loader"
	"github.com/fwojciec/symdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports a well-formed shard", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, "-s", shardDir(t), "check", "--round-trip")

		require.NoError(t, err)
		assert.Contains(t, stdout, "c: 187 entries, 0 dropped")
		assert.Contains(t, stdout, "round-trip: ok")
		assert.Contains(t, stdout, "Checked 1 shards: 187 entries, 0 dropped records")
	})

	t.Run("reports dropped records", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := "var searchData=[['dd',['dd',['d.html#1',1]]],['delta',5],['da',['da',['d.html#2',1]]]];"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "d.js"), []byte(src), 0644))

		stdout, _, err := run(t, "-s", dir, "check", "d")

		assert.Equal(t, symdex.EMALFORMED, symdex.ErrorCode(err))
		assert.Contains(t, stdout, "d: 1 entries, 2 dropped")
		assert.Contains(t, stdout, "(delta)")
		assert.Contains(t, stdout, "(da)")
	})

	t.Run("reports a shard that is not a table", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "x.js"), []byte("<html></html>"), 0644))

		stdout, _, err := run(t, "-s", dir, "check", "x")

		assert.Equal(t, symdex.EMALFORMED, symdex.ErrorCode(err))
		assert.Contains(t, stdout, "x: ")
		assert.Contains(t, stdout, "not a table literal")
	})

	t.Run("fails for a named bucket that does not exist", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, "-s", t.TempDir(), "check", "q")

		assert.Equal(t, symdex.ENOTFOUND, symdex.ErrorCode(err))
		assert.Contains(t, stderr, "error: q:")
	})
}

func TestMirrorCmd(t *testing.T) {
	t.Parallel()

	t.Run("copies every served shard", func(t *testing.T) {
		t.Parallel()

		fixture, err := os.ReadFile("testdata/c.js")
		require.NoError(t, err)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/c.js" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(fixture)
		}))
		t.Cleanup(srv.Close)

		out := filepath.Join(t.TempDir(), "mirror")

		stdout, _, err := run(t, "-s", srv.URL+"/search", "mirror", out)

		require.NoError(t, err)
		assert.Contains(t, stdout, "Mirrored 1 shards to "+out)
		got, err := os.ReadFile(filepath.Join(out, "c.js"))
		require.NoError(t, err)
		assert.Equal(t, fixture, got)
	})

	t.Run("leaves no directory when a fetch fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		out := filepath.Join(t.TempDir(), "mirror")

		_, stderr, err := run(t, "-s", srv.URL, "mirror", out)

		require.Error(t, err)
		assert.Contains(t, stderr, "error:")
		assert.NoDirExists(t, out)
	})
}

func TestCacheListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists cached shards", func(t *testing.T) {
		t.Parallel()

		var got symdex.CachedShardFilter
		cache := &mock.ShardCacheService{
			FindCachedShardsFn: func(_ context.Context, filter symdex.CachedShardFilter) ([]*symdex.CachedShard, error) {
				got = filter
				return []*symdex.CachedShard{{
					Source:      "https://example.com/search",
					Bucket:      "c",
					Size:        1234,
					ContentHash: "00ff",
					FetchedAt:   time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
				}}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: io.Discard, Cache: cache}

		err := (&main.CacheListCmd{Of: "https://example.com/search"}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, got.Source)
		assert.Equal(t, "https://example.com/search", *got.Source)
		assert.Equal(t, "https://example.com/search  c  1234 bytes  00ff  2025-01-15T10:00:00Z\n", stdout.String())
	})

	t.Run("reports an empty cache", func(t *testing.T) {
		t.Parallel()

		cache := &mock.ShardCacheService{
			FindCachedShardsFn: func(_ context.Context, filter symdex.CachedShardFilter) ([]*symdex.CachedShard, error) {
				assert.Nil(t, filter.Source)
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: io.Discard, Cache: cache}

		err := (&main.CacheListCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "No cached shards.\n", stdout.String())
	})

	t.Run("reports lookup errors", func(t *testing.T) {
		t.Parallel()

		cache := &mock.ShardCacheService{
			FindCachedShardsFn: func(context.Context, symdex.CachedShardFilter) ([]*symdex.CachedShard, error) {
				return nil, symdex.Errorf(symdex.EINTERNAL, "database locked")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: io.Discard, Stderr: stderr, Cache: cache}

		err := (&main.CacheListCmd{}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "database locked")
	})
}

func TestCachePurgeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("purges and reports the count", func(t *testing.T) {
		t.Parallel()

		var purged string
		cache := &mock.ShardCacheService{
			PurgeCachedShardsFn: func(_ context.Context, source string) (int, error) {
				purged = source
				return 3, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: io.Discard, Cache: cache}

		err := (&main.CachePurgeCmd{Of: "docs"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "docs", purged)
		assert.Equal(t, "Purged 3 cached shards\n", stdout.String())
	})

	t.Run("purges through the cache database", func(t *testing.T) {
		t.Parallel()

		dir := shardDir(t)
		db := filepath.Join(t.TempDir(), "cache.db")

		_, _, err := run(t, "-s", dir, "--cache-db", db, "query", "creat")
		require.NoError(t, err)

		stdout, _, err := run(t, "--cache-db", db, "cache", "purge")
		require.NoError(t, err)
		assert.Equal(t, "Purged 1 cached shards\n", stdout)

		stdout, _, err = run(t, "--cache-db", db, "cache", "list")
		require.NoError(t, err)
		assert.Equal(t, "No cached shards.\n", stdout)
	})
}

// prompter replays lines, then reports EOF.
type prompter struct {
	lines   []string
	history []string
}

func (p *prompter) Prompt(string) (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *prompter) AppendHistory(line string) {
	p.history = append(p.history, line)
}

func replDeps(t *testing.T, source symdex.ShardSource, stdout io.Writer) *main.Dependencies {
	t.Helper()

	cfg := symdex.DefaultConfig()
	cfg.Search.Debounce = time.Millisecond

	l := loader.NewLoader(source, doxygen.NewCodec())
	l.RetryDelays = []time.Duration{time.Millisecond}

	return &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  stdout,
		Stderr:  io.Discard,
		Config:  cfg,
		Loader:  l,
		Router:  cfg.Index.Router(),
		Matcher: &symdex.Matcher{},
		Ranker:  &symdex.Ranker{Limit: 50},
	}
}

func TestRunREPL(t *testing.T) {
	t.Parallel()

	t.Run("prints results for each line", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := replDeps(t, fs.NewShardSource(shardDir(t), ".js"), stdout)
		p := &prompter{lines: []string{"cut_p", "", "zebra"}}

		err := main.RunREPL(deps, p, 0)

		require.NoError(t, err)
		out := stdout.String()
		assert.True(t, strings.HasPrefix(out, "Type an identifier to search, :q to quit.\n"))
		assert.Contains(t, out, "cut_path\t../namespacevg.html#a0456e049dd685a689886372f4b0a354d\tvg::cut_path(const Path &path, const Position &pos)\n")
		assert.Equal(t, 2, strings.Count(out, "No matches.\n"))
		assert.Equal(t, []string{"cut_p", "zebra"}, p.history)
	})

	t.Run("applies the result limit", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := replDeps(t, fs.NewShardSource(shardDir(t), ".js"), stdout)

		err := main.RunREPL(deps, &prompter{lines: []string{"create"}}, 1)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[1], "create\t"))
	})

	t.Run("stops at quit command", func(t *testing.T) {
		t.Parallel()

		var fetched bool
		source := &mock.ShardSource{
			FetchShardFn: func(context.Context, symdex.BucketID) ([]byte, error) {
				fetched = true
				return nil, symdex.Errorf(symdex.ENOTFOUND, "missing")
			},
		}
		stdout := &bytes.Buffer{}
		p := &prompter{lines: []string{":q", "clear"}}

		err := main.RunREPL(replDeps(t, source, stdout), p, 0)

		require.NoError(t, err)
		assert.False(t, fetched)
		assert.Equal(t, []string{"clear"}, p.lines)
	})

	t.Run("prints load failures and keeps reading", func(t *testing.T) {
		t.Parallel()

		source := &mock.ShardSource{
			FetchShardFn: func(context.Context, symdex.BucketID) ([]byte, error) {
				return nil, errors.New("connection refused")
			},
		}
		stdout := &bytes.Buffer{}
		p := &prompter{lines: []string{"clear", "copy"}}

		err := main.RunREPL(replDeps(t, source, stdout), p, 0)

		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(stdout.String(), "error: shard c unavailable after 2 attempts"))
	})
}
