package symdex

import (
	"cmp"
	"context"
	"slices"
	"sort"
)

// BucketID identifies one shard of a search index, e.g. "c" or "functions_3".
type BucketID string

// Occurrence is one documented location of an identifier.
type Occurrence struct {
	// Label is the display name, usually scope-qualified.
	Label string `json:"label"`

	// URL is the target page path plus anchor. It is an opaque navigation
	// token and is never parsed or rewritten.
	URL string `json:"url"`

	// Tooltip is the optional disambiguating signature. Empty means absent.
	Tooltip string `json:"tooltip,omitempty"`

	// TargetParent is the generator's per-link frame flag.
	TargetParent bool `json:"targetParent,omitempty"`
}

// Entry is one normalized identifier key and its occurrences in
// declaration order.
type Entry struct {
	Key         string       `json:"key"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Diagnostic records a record that was dropped while building a shard.
type Diagnostic struct {
	Bucket BucketID `json:"bucket"`
	Index  int      `json:"index"`
	Key    string   `json:"key,omitempty"`
	Reason string   `json:"reason"`
}

// Error returns the diagnostic as an EMALFORMED application error.
func (d Diagnostic) Error() error {
	if d.Key == "" {
		return Errorf(EMALFORMED, "%s: record %d: %s", d.Bucket, d.Index, d.Reason)
	}
	return Errorf(EMALFORMED, "%s: record %d (%s): %s", d.Bucket, d.Index, d.Key, d.Reason)
}

// Shard is an immutable, key-sorted table of entries for one bucket.
// Use NewShard to construct one; the Entries slice must not be modified.
type Shard struct {
	ID          BucketID     `json:"id"`
	Entries     []Entry      `json:"entries"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// NewShard builds a shard from entries in file order.
//
// Records that would break the shard invariants are dropped and reported as
// diagnostics rather than failing the whole shard: entries without a key,
// entries whose key sorts before the previous accepted key, and occurrences
// repeating a URL already seen for the same entry. Entries left without
// occurrences are dropped as well.
func NewShard(id BucketID, entries []Entry) *Shard {
	return NewShardWithDiagnostics(id, entries, nil, nil)
}

// NewShardWithDiagnostics is like NewShard but starts from diagnostics the
// caller already collected, e.g. while parsing. records, if not nil, gives
// the record index reported for each entry; otherwise the entry's position
// is used.
func NewShardWithDiagnostics(id BucketID, entries []Entry, records []int, diags []Diagnostic) *Shard {
	s := &Shard{
		ID:          id,
		Entries:     make([]Entry, 0, len(entries)),
		Diagnostics: slices.Clone(diags),
	}

	var prev string
	for j, e := range entries {
		i := j
		if records != nil {
			i = records[j]
		}
		if e.Key == "" {
			s.diagnose(i, "", "missing key")
			continue
		}
		if len(s.Entries) > 0 && e.Key < prev {
			s.diagnose(i, e.Key, "key out of order after "+prev)
			continue
		}

		occs := make([]Occurrence, 0, len(e.Occurrences))
		seen := make(map[string]struct{}, len(e.Occurrences))
		for _, o := range e.Occurrences {
			if _, dup := seen[o.URL]; dup {
				s.diagnose(i, e.Key, "duplicate url "+o.URL)
				continue
			}
			seen[o.URL] = struct{}{}
			occs = append(occs, o)
		}
		if len(occs) == 0 {
			s.diagnose(i, e.Key, "no occurrences")
			continue
		}

		s.Entries = append(s.Entries, Entry{Key: e.Key, Occurrences: occs})
		prev = e.Key
	}

	slices.SortStableFunc(s.Diagnostics, func(a, b Diagnostic) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return s
}

func (s *Shard) diagnose(index int, key, reason string) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{
		Bucket: s.ID,
		Index:  index,
		Key:    key,
		Reason: reason,
	})
}

// Len returns the number of entries in the shard.
func (s *Shard) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Sorted reports whether entries are in non-decreasing key order.
func (s *Shard) Sorted() bool {
	return sort.SliceIsSorted(s.Entries, func(i, j int) bool {
		return s.Entries[i].Key < s.Entries[j].Key
	})
}

// ShardSource fetches the raw bytes of a shard file.
type ShardSource interface {
	// FetchShard returns the shard file for the bucket.
	// Returns ENOTFOUND if the generator wrote no file for the bucket.
	FetchShard(ctx context.Context, id BucketID) ([]byte, error)
}

// ShardWriter stores raw shard files.
type ShardWriter interface {
	// SaveShard stores the shard file for the bucket.
	SaveShard(ctx context.Context, id BucketID, data []byte) error
}

// ShardDecoder parses raw shard bytes.
type ShardDecoder interface {
	// DecodeShard parses data into a shard. Malformed records are dropped
	// and reported in Shard.Diagnostics; an unparseable document returns
	// EINVALID.
	DecodeShard(id BucketID, data []byte) (*Shard, error)
}

// ShardLoader resolves buckets to loaded shards.
type ShardLoader interface {
	// Load returns the shard for the bucket, fetching it on first use.
	// Returns EUNAVAILABLE when the fetch keeps failing.
	Load(ctx context.Context, id BucketID) (*Shard, error)
}
