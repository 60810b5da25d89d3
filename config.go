package symdex

import (
	"strconv"
	"strings"
	"time"
)

// Fold modes for IndexConfig.Fold.
const (
	FoldModeNone    = "none"
	FoldModeASCII   = "ascii"
	FoldModeUnicode = "unicode"
)

// Partition schemes for IndexConfig.Partition.
const (
	PartitionLetter   = "letter"
	PartitionAlphabet = "alphabet"
)

// Config holds the settings for loading and querying a search index.
type Config struct {
	Source SourceConfig `toml:"source"`
	Index  IndexConfig  `toml:"index"`
	Search SearchConfig `toml:"search"`
	Loader LoaderConfig `toml:"loader"`
	Cache  CacheConfig  `toml:"cache"`
}

// SourceConfig locates the shard files.
type SourceConfig struct {
	// Location is a directory or an http(s) base URL.
	Location  string        `toml:"location"`
	Extension string        `toml:"extension"`
	Timeout   time.Duration `toml:"timeout"`

	// RateLimit caps remote fetches per second. Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
}

// Remote reports whether Location is an http(s) URL.
func (c SourceConfig) Remote() bool {
	return strings.HasPrefix(c.Location, "http://") || strings.HasPrefix(c.Location, "https://")
}

// IndexConfig describes how the generator keyed and split the index.
type IndexConfig struct {
	Indexes   []string `toml:"indexes"`
	Partition string   `toml:"partition"`
	Alphabet  string   `toml:"alphabet"`
	Fold      string   `toml:"fold"`
}

// Partitioner returns the partition function the config names.
func (c IndexConfig) Partitioner() Partitioner {
	if c.Partition == PartitionAlphabet {
		return AlphabetPartitioner{Alphabet: c.Alphabet}
	}
	return LetterPartitioner{}
}

// Router returns a Router for the configured indexes and partition.
func (c IndexConfig) Router() *Router {
	return &Router{Indexes: c.Indexes, Partitioner: c.Partitioner()}
}

// Buckets lists every bucket the generator could have written: one per
// alphabet character and index. Buckets for empty partitions may not exist.
func (c IndexConfig) Buckets() []BucketID {
	r := c.Router()
	var ids []BucketID
	i := 0
	for _, ch := range c.Alphabet {
		part := string(ch)
		if c.Partition == PartitionAlphabet {
			part = strconv.Itoa(i)
		}
		ids = append(ids, r.IDs(part)...)
		i++
	}
	return ids
}

// SearchConfig tunes matching and ranking.
type SearchConfig struct {
	MinPrefixResults int           `toml:"min_prefix_results"`
	Limit            int           `toml:"limit"`
	Debounce         time.Duration `toml:"debounce"`
}

// LoaderConfig tunes shard fetching.
type LoaderConfig struct {
	RetryDelays []time.Duration `toml:"retry_delays"`
}

// CacheConfig configures the on-disk shard cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	// MaxAge is how long a cached shard is used before it is fetched
	// again. Zero keeps cached shards until purged.
	MaxAge time.Duration `toml:"max_age"`
}

// DefaultRetryDelays returns the backoff delays between shard fetch
// attempts: 100ms, 200ms, 400ms.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Extension: ".js",
			Timeout:   10 * time.Second,
		},
		Index: IndexConfig{
			Partition: PartitionLetter,
			Alphabet:  DoxygenAlphabet,
			Fold:      FoldModeASCII,
		},
		Search: SearchConfig{
			MinPrefixResults: DefaultMinPrefixResults,
			Limit:            50,
			Debounce:         50 * time.Millisecond,
		},
		Loader: LoaderConfig{
			RetryDelays: DefaultRetryDelays(),
		},
	}
}

// Validate returns an error if the config contains invalid fields.
func (c *Config) Validate() error {
	switch c.Index.Fold {
	case FoldModeNone, FoldModeASCII, FoldModeUnicode:
	default:
		return Errorf(EINVALID, "unknown fold mode %q", c.Index.Fold)
	}
	switch c.Index.Partition {
	case PartitionLetter:
	case PartitionAlphabet:
		if c.Index.Alphabet == "" {
			return Errorf(EINVALID, "alphabet partition requires an alphabet")
		}
	default:
		return Errorf(EINVALID, "unknown partition %q", c.Index.Partition)
	}
	if c.Search.MinPrefixResults < 0 {
		return Errorf(EINVALID, "min prefix results must not be negative")
	}
	if c.Search.Limit < 0 {
		return Errorf(EINVALID, "limit must not be negative")
	}
	if c.Search.Debounce < 0 {
		return Errorf(EINVALID, "debounce must not be negative")
	}
	for _, d := range c.Loader.RetryDelays {
		if d < 0 {
			return Errorf(EINVALID, "retry delays must not be negative")
		}
	}
	if c.Source.RateLimit < 0 {
		return Errorf(EINVALID, "rate limit must not be negative")
	}
	if c.Cache.MaxAge < 0 {
		return Errorf(EINVALID, "cache max age must not be negative")
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return Errorf(EINVALID, "cache path required when cache is enabled")
	}
	return nil
}
