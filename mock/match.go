package mock

import "github.com/fwojciec/symdex"

var _ symdex.Prefilter = (*Prefilter)(nil)

// Prefilter is a mock implementation of symdex.Prefilter.
type Prefilter struct {
	MayContainFn func(id symdex.BucketID, substr string) bool
}

func (p *Prefilter) MayContain(id symdex.BucketID, substr string) bool {
	return p.MayContainFn(id, substr)
}
