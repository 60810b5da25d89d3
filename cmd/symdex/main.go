package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/bloom"
	"github.com/fwojciec/symdex/doxygen"
	"github.com/fwojciec/symdex/fold"
	"github.com/fwojciec/symdex/fs"
	symhttp "github.com/fwojciec/symdex/http"
	"github.com/fwojciec/symdex/loader"
	symslog "github.com/fwojciec/symdex/slog"
	"github.com/fwojciec/symdex/sqlite"
	"github.com/fwojciec/symdex/toml"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cache database path used by the cache commands when the config names
	// none. Set before calling Run().
	DBPath string

	// SQLite database backing the shard cache, if opened.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("symdex"),
		kong.Description("Search sharded symbol indexes of generated documentation."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.DefaultEnvars("SYMDEX"),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'symdex --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", symdex.ErrorMessage(err))
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	command := kongCtx.Command()
	switch {
	case command == "config":
		return kongCtx.Run(deps)
	case strings.HasPrefix(command, "cache"):
		path := cfg.Cache.Path
		if path == "" {
			path = m.DBPath
		}
		if err := m.openDB(path, stderr); err != nil {
			return err
		}
		defer m.Close()
		deps.Cache = sqlite.NewShardCacheService(m.DB)
		return kongCtx.Run(deps)
	}

	if cfg.Source.Location == "" {
		fmt.Fprintln(stderr, "Hint: pass --source or set SYMDEX_SOURCE to a shard directory or URL")
		return symdex.Errorf(symdex.EINVALID, "no source location configured")
	}

	deps.Source, err = m.newSource(cfg, deps.Logger, stderr)
	if err != nil {
		return err
	}
	defer m.Close()

	normalizer, err := fold.Normalizer(cfg.Index.Fold)
	if err != nil {
		return err
	}
	prefilter := bloom.NewPrefilter()

	l := loader.NewLoader(deps.Source, doxygen.NewCodec())
	l.RetryDelays = cfg.Loader.RetryDelays
	l.OnLoad = prefilter.Add
	l.Logger = func(format string, args ...any) {
		deps.Logger.Debug(fmt.Sprintf(format, args...))
	}

	deps.Loader = symslog.NewLoggingShardLoader(l, deps.Logger)
	deps.Router = cfg.Index.Router()
	deps.Matcher = &symdex.Matcher{
		Normalizer:       normalizer,
		MinPrefixResults: cfg.Search.MinPrefixResults,
		Prefilter:        prefilter,
	}
	deps.Ranker = &symdex.Ranker{
		Normalizer: normalizer,
		Limit:      cfg.Search.Limit,
	}

	return kongCtx.Run(deps)
}

// newSource builds the shard source chain: the file or HTTP source, its
// logging decorator and, when enabled, the SQLite read-through cache.
func (m *Main) newSource(cfg *symdex.Config, logger *slog.Logger, stderr io.Writer) (symdex.ShardSource, error) {
	var source symdex.ShardSource
	if cfg.Source.Remote() {
		source = symhttp.NewShardSource(cfg.Source.Location,
			symhttp.WithTimeout(cfg.Source.Timeout),
			symhttp.WithExtension(cfg.Source.Extension),
			symhttp.WithRateLimit(cfg.Source.RateLimit),
		)
	} else {
		source = fs.NewShardSource(cfg.Source.Location, cfg.Source.Extension)
	}
	source = symslog.NewLoggingShardSource(source, logger)

	if !cfg.Cache.Enabled {
		return source, nil
	}
	if err := m.openDB(cfg.Cache.Path, stderr); err != nil {
		return nil, err
	}
	cache := sqlite.NewShardCache(m.DB, source, cfg.Source.Location)
	cache.MaxAge = cfg.Cache.MaxAge
	return cache, nil
}

func (m *Main) openDB(path string, stderr io.Writer) error {
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SYMDEX_CACHE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cli *CLI) (*symdex.Config, error) {
	cfg := symdex.DefaultConfig()
	if cli.Config != "" {
		var err error
		if cfg, err = toml.LoadConfig(cli.Config); err != nil {
			return nil, err
		}
	}

	if cli.Source != "" {
		cfg.Source.Location = cli.Source
	}
	if len(cli.Indexes) > 0 {
		cfg.Index.Indexes = cli.Indexes
	}
	if cli.Partition != "" {
		cfg.Index.Partition = cli.Partition
	}
	if cli.Fold != "" {
		cfg.Index.Fold = cli.Fold
	}
	if cli.CacheDB != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.Path = cli.CacheDB
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		Prefix:          "symdex",
	})
	return slog.New(handler)
}

func defaultDBPath() string {
	if path := os.Getenv("SYMDEX_CACHE_DB"); path != "" {
		return path
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "symdex.db"
	}
	dir = filepath.Join(dir, "symdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cache.db")
}
