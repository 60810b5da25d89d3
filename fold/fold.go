// Package fold provides case-folding functions for symdex.Normalizer
// backed by golang.org/x/text.
package fold

import (
	"github.com/fwojciec/symdex"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Unicode returns a fold function that applies NFKC normalization followed
// by full Unicode case folding, so "Straße" and "STRASSE" fold alike.
// The returned function is safe for concurrent use.
func Unicode() symdex.FoldFunc {
	return func(s string) string {
		// cases.Caser is stateful; use a fresh one per call.
		return cases.Fold().String(norm.NFKC.String(s))
	}
}

// ByName returns the fold function for a config fold mode.
func ByName(mode string) (symdex.FoldFunc, error) {
	switch mode {
	case symdex.FoldModeNone:
		return symdex.NoFold, nil
	case symdex.FoldModeASCII, "":
		return symdex.ASCIIFold, nil
	case symdex.FoldModeUnicode:
		return Unicode(), nil
	}
	return nil, symdex.Errorf(symdex.EINVALID, "unknown fold mode %q", mode)
}

// Normalizer returns a symdex.Normalizer for a config fold mode.
func Normalizer(mode string) (*symdex.Normalizer, error) {
	f, err := ByName(mode)
	if err != nil {
		return nil, err
	}
	return &symdex.Normalizer{Fold: f}, nil
}
