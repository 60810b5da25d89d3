package symdex

import "strconv"

// Partitioner derives the bucket of a normalized key from its first
// character, using the same function the generator used to split the index.
type Partitioner interface {
	// Bucket returns the bucket for a normalized key.
	// The bool result is false if no bucket can hold the key.
	Bucket(key string) (string, bool)
}

// LetterPartitioner buckets keys by their first character: "create" goes
// to bucket "c".
type LetterPartitioner struct{}

// Bucket implements Partitioner.
func (LetterPartitioner) Bucket(key string) (string, bool) {
	r, ok := FirstRune(key)
	if !ok {
		return "", false
	}
	return string(r), true
}

// DoxygenAlphabet is the character set Doxygen typically lists for a
// functions index: underscore, letters, then tilde for destructors.
const DoxygenAlphabet = "_abcdefghijklmnopqrstuvwxyz~"

// AlphabetPartitioner buckets keys by the position of their first character
// in Alphabet, the way Doxygen numbers its search files. With
// DoxygenAlphabet, "create" goes to bucket "3".
type AlphabetPartitioner struct {
	Alphabet string
}

// Bucket implements Partitioner.
func (p AlphabetPartitioner) Bucket(key string) (string, bool) {
	r, ok := FirstRune(key)
	if !ok {
		return "", false
	}
	i := 0
	for _, c := range p.Alphabet {
		if c == r {
			return strconv.Itoa(i), true
		}
		i++
	}
	return "", false
}

// Router maps queries to the buckets that could contain matches.
type Router struct {
	// Indexes lists the generator's index names (e.g. "all", "functions").
	// When empty, bucket IDs are the bare partition names.
	Indexes []string

	// Partitioner defaults to LetterPartitioner.
	Partitioner Partitioner
}

// Route returns the buckets for a normalized query, one per index.
// Returns nil for an empty query or a character no bucket holds.
func (r *Router) Route(normalized string) []BucketID {
	p := r.Partitioner
	if p == nil {
		p = LetterPartitioner{}
	}
	part, ok := p.Bucket(normalized)
	if !ok {
		return nil
	}
	return r.IDs(part)
}

// IDs returns the bucket IDs of a partition, one per index.
func (r *Router) IDs(part string) []BucketID {
	if len(r.Indexes) == 0 {
		return []BucketID{BucketID(part)}
	}

	ids := make([]BucketID, 0, len(r.Indexes))
	for _, index := range r.Indexes {
		ids = append(ids, BucketID(index+"_"+part))
	}
	return ids
}
