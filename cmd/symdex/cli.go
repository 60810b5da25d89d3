package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/session"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Config  *symdex.Config
	Source  symdex.ShardSource
	Loader  symdex.ShardLoader
	Router  *symdex.Router
	Matcher *symdex.Matcher
	Ranker  *symdex.Ranker
	Cache   symdex.ShardCacheService
}

// NewSession returns a search session over the loader. Callers must
// close it.
func (d *Dependencies) NewSession(debounce time.Duration) *session.Session {
	s := session.NewSession(d.Loader)
	s.Router = d.Router
	s.Matcher = d.Matcher
	s.Ranker = d.Ranker
	s.Debounce = debounce
	return s
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    string   `short:"c" type:"path" help:"TOML config file"`
	Source    string   `short:"s" help:"Shard directory or base URL"`
	Indexes   []string `help:"Index names the generator prefixed buckets with (e.g. all,functions)"`
	Partition string   `help:"Bucket scheme: letter or alphabet"`
	Fold      string   `help:"Case folding: none, ascii or unicode"`
	CacheDB   string   `name:"cache-db" type:"path" help:"Cache fetched shards in this SQLite database"`
	Verbose   bool     `short:"v" help:"Log debug output"`

	Query  QueryCmd  `cmd:"" help:"Search the index once"`
	Repl   ReplCmd   `cmd:"" help:"Search interactively"`
	Check  CheckCmd  `cmd:"" help:"Validate shard files"`
	Mirror MirrorCmd `cmd:"" help:"Copy every shard file to a local directory"`
	Cache  CacheCmd  `cmd:"" help:"Manage the shard cache"`
	Show   ShowCmd   `cmd:"" name:"config" help:"Print the effective configuration"`
}

// QueryCmd is the "query" subcommand.
type QueryCmd struct {
	Query string `arg:"" help:"Identifier text to search for"`
	Limit int    `short:"n" help:"Maximum number of results"`
	JSON  bool   `help:"Print results as JSON"`
}

// ReplCmd is the "repl" subcommand.
type ReplCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of results per query"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Buckets   []string `arg:"" optional:"" help:"Buckets to check (default: all)"`
	RoundTrip bool     `help:"Verify each shard re-encodes to identical bytes"`
}

// MirrorCmd is the "mirror" subcommand.
type MirrorCmd struct {
	Dir         string `arg:"" type:"path" help:"Output directory"`
	Concurrency int    `default:"4" help:"Concurrent fetch limit"`
}

// CacheCmd groups the cache subcommands.
type CacheCmd struct {
	List  CacheListCmd  `cmd:"" help:"List cached shards"`
	Purge CachePurgeCmd `cmd:"" help:"Delete cached shards"`
}

// CacheListCmd is the "cache list" subcommand.
type CacheListCmd struct {
	Of string `name:"of" help:"Only list shards of this source"`
}

// CachePurgeCmd is the "cache purge" subcommand.
type CachePurgeCmd struct {
	Of string `name:"of" help:"Only purge shards of this source"`
}

// ShowCmd is the "config" subcommand.
type ShowCmd struct{}
