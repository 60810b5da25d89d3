package symdex

import (
	"sort"
	"strings"
)

// DefaultMinPrefixResults triggers the substring fallback only when no
// prefix match exists.
const DefaultMinPrefixResults = 1

// Prefilter can rule out a substring scan of a shard. It may report false
// positives but never false negatives.
type Prefilter interface {
	MayContain(id BucketID, substr string) bool
}

// Matcher finds the entries of loaded shards that match a query.
// It is pure: it never fetches and never modifies a shard.
type Matcher struct {
	Normalizer *Normalizer

	// MinPrefixResults is the prefix match count below which substring
	// matches are added. Values below 1 are treated as 1.
	MinPrefixResults int

	// Prefilter is optional.
	Prefilter Prefilter
}

// Match returns the entries of shard matching query: prefix matches in key
// order, followed by substring-only matches when prefix matches are scarce.
// An empty query matches nothing.
func (m *Matcher) Match(query string, shard *Shard) []*Entry {
	return m.MatchAll(query, []*Shard{shard})
}

// MatchAll is like Match over several shards. The substring fallback is
// decided on the prefix match count across all shards.
func (m *Matcher) MatchAll(query string, shards []*Shard) []*Entry {
	return m.MatchNormalized(m.Normalizer.Query(query), shards)
}

// MatchNormalized is like MatchAll for an already normalized query.
func (m *Matcher) MatchNormalized(q string, shards []*Shard) []*Entry {
	if q == "" {
		return nil
	}

	var matches []*Entry
	ranges := make([][2]int, len(shards))
	for i, s := range shards {
		if s == nil {
			continue
		}
		lo, hi := PrefixRange(s.Entries, q)
		ranges[i] = [2]int{lo, hi}
		for j := lo; j < hi; j++ {
			matches = append(matches, &s.Entries[j])
		}
	}

	want := m.MinPrefixResults
	if want < 1 {
		want = DefaultMinPrefixResults
	}
	if len(matches) >= want {
		return matches
	}

	for i, s := range shards {
		if s == nil {
			continue
		}
		if m.Prefilter != nil && !m.Prefilter.MayContain(s.ID, q) {
			continue
		}
		lo, hi := ranges[i][0], ranges[i][1]
		for j := range s.Entries {
			if j >= lo && j < hi {
				continue
			}
			if ContainsKey(s.Entries[j].Key, q) {
				matches = append(matches, &s.Entries[j])
			}
		}
	}
	return matches
}

// PrefixRange returns the half-open range of entries whose keys start with
// prefix. Entries must be sorted by key.
func PrefixRange(entries []Entry, prefix string) (lo, hi int) {
	lo = sort.Search(len(entries), func(i int) bool {
		return entries[i].Key >= prefix
	})
	hi = lo
	for hi < len(entries) && strings.HasPrefix(entries[hi].Key, prefix) {
		hi++
	}
	return lo, hi
}

// ContainsKey reports whether the normalized key contains the normalized
// query starting on a character boundary, so "5f" does not match inside
// the "_5f" escape of an underscore.
func ContainsKey(key, q string) bool {
	if q == "" {
		return false
	}
	for off := 0; off+len(q) <= len(key); {
		i := strings.Index(key[off:], q)
		if i < 0 {
			return false
		}
		if onBoundary(key, off+i) {
			return true
		}
		off += i + 1
	}
	return false
}

func onBoundary(key string, pos int) bool {
	i := 0
	for i < pos {
		if key[i] == '_' {
			i += 3
		} else {
			i++
		}
	}
	return i == pos
}
