// Package bloom rules out substring scans of shards using Bloom filters
// over the n-grams of their keys.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/symdex"
)

// DefaultFalsePositiveRate is the target false positive rate per filter.
const DefaultFalsePositiveRate = 0.01

// gram is the longest n-gram recorded per key.
const gram = 3

// Filter holds every 1-, 2- and 3-gram of one shard's keys.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter builds a filter for the keys of shard with the given false
// positive rate.
func NewFilter(shard *symdex.Shard, fpRate float64) *Filter {
	n := 0
	for _, e := range shard.Entries {
		n += gram * len(e.Key)
	}
	f := &Filter{f: bloom.NewWithEstimates(uint(max(n, 1)), fpRate)}
	for _, e := range shard.Entries {
		f.add(e.Key)
	}
	return f
}

func (f *Filter) add(key string) {
	for i := range len(key) {
		for j := i + 1; j <= min(i+gram, len(key)); j++ {
			f.f.AddString(key[i:j])
		}
	}
}

// MayContain reports whether some key might contain substr. False positives
// are possible; false negatives are not.
func (f *Filter) MayContain(substr string) bool {
	if len(substr) <= gram {
		return f.f.TestString(substr)
	}
	for i := 0; i+gram <= len(substr); i++ {
		if !f.f.TestString(substr[i : i+gram]) {
			return false
		}
	}
	return true
}

// EstimatedCount returns the approximate number of n-grams in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Ensure Prefilter implements symdex.Prefilter.
var _ symdex.Prefilter = (*Prefilter)(nil)

// Prefilter keeps one Filter per loaded shard. Add it as the loader's
// OnLoad hook so every cached shard gets a filter.
type Prefilter struct {
	// FalsePositiveRate defaults to DefaultFalsePositiveRate.
	FalsePositiveRate float64

	mu      sync.RWMutex
	filters map[symdex.BucketID]*Filter
}

// NewPrefilter returns an empty Prefilter.
func NewPrefilter() *Prefilter {
	return &Prefilter{FalsePositiveRate: DefaultFalsePositiveRate}
}

// Add builds and stores the filter for shard, replacing any earlier one.
func (p *Prefilter) Add(shard *symdex.Shard) {
	rate := p.FalsePositiveRate
	if rate <= 0 {
		rate = DefaultFalsePositiveRate
	}
	f := NewFilter(shard, rate)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.filters == nil {
		p.filters = make(map[symdex.BucketID]*Filter)
	}
	p.filters[shard.ID] = f
}

// Remove drops the filter for id.
func (p *Prefilter) Remove(id symdex.BucketID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.filters, id)
}

// MayContain implements symdex.Prefilter. Buckets without a filter may
// contain anything.
func (p *Prefilter) MayContain(id symdex.BucketID, substr string) bool {
	p.mu.RLock()
	f, ok := p.filters[id]
	p.mu.RUnlock()
	if !ok {
		return true
	}
	return f.MayContain(substr)
}
