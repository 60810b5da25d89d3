package symdex

import (
	"cmp"
	"slices"
	"strings"
)

// MatchKind orders matches by quality, best first.
type MatchKind int

// Match kinds.
const (
	MatchExact MatchKind = iota
	MatchPrefix
	MatchSubstring
)

// String returns the kind's name.
func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchSubstring:
		return "substring"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classify returns how the normalized key matches the normalized query.
func Classify(key, q string) MatchKind {
	switch {
	case key == q:
		return MatchExact
	case strings.HasPrefix(key, q):
		return MatchPrefix
	}
	return MatchSubstring
}

// Row is one ranked result: a single occurrence of a matching entry.
type Row struct {
	Key        string     `json:"key"`
	Occurrence Occurrence `json:"occurrence"`
	Kind       MatchKind  `json:"kind"`

	// Entry is the matching entry the occurrence belongs to.
	Entry *Entry `json:"-"`
}

// Ranker orders matched entries into result rows.
type Ranker struct {
	Normalizer *Normalizer

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// Rank flattens entries into one row per occurrence and orders them:
// exact before prefix before substring matches, then shorter keys first,
// then the order entries and occurrences were given in. The result is
// identical for identical inputs.
func (r *Ranker) Rank(entries []*Entry, query string) []Row {
	return r.RankNormalized(entries, r.Normalizer.Query(query))
}

// RankNormalized is like Rank for an already normalized query.
func (r *Ranker) RankNormalized(entries []*Entry, q string) []Row {
	if q == "" || len(entries) == 0 {
		return nil
	}

	var rows []Row
	for _, e := range entries {
		kind := Classify(e.Key, q)
		for _, o := range e.Occurrences {
			rows = append(rows, Row{
				Key:        e.Key,
				Occurrence: o,
				Kind:       kind,
				Entry:      e,
			})
		}
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(len(a.Key), len(b.Key))
	})

	if r.Limit > 0 && len(rows) > r.Limit {
		rows = rows[:r.Limit]
	}
	return rows
}
