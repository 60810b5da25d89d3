package fold_test

import (
	"testing"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/fold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnicode(t *testing.T) {
	t.Parallel()

	f := fold.Unicode()

	assert.Equal(t, "strasse", f("STRASSE"))
	assert.Equal(t, "strasse", f("Straße"))
	assert.Equal(t, "fi", f("ﬁ"))
}

func TestByName(t *testing.T) {
	t.Parallel()

	t.Run("resolves config modes", func(t *testing.T) {
		t.Parallel()

		none, err := fold.ByName(symdex.FoldModeNone)
		require.NoError(t, err)
		assert.Equal(t, "CutPath", none("CutPath"))

		ascii, err := fold.ByName(symdex.FoldModeASCII)
		require.NoError(t, err)
		assert.Equal(t, "cutpath", ascii("CutPath"))

		uni, err := fold.ByName(symdex.FoldModeUnicode)
		require.NoError(t, err)
		assert.Equal(t, "ärger", uni("ÄRGER"))
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		t.Parallel()

		_, err := fold.ByName("klingon")

		assert.Equal(t, symdex.EINVALID, symdex.ErrorCode(err))
	})
}

func TestNormalizer(t *testing.T) {
	t.Parallel()

	n, err := fold.Normalizer(symdex.FoldModeUnicode)
	require.NoError(t, err)

	assert.Equal(t, n.Normalize("Äpfel"), n.Normalize("äPFEL"))
	assert.Equal(t, "_c3_a4pfel", n.Normalize("Äpfel"))
}
