package symdex

import (
	"strings"
	"unicode/utf8"
)

// FoldFunc case-folds raw identifier text before it is encoded.
type FoldFunc func(string) string

// NoFold leaves text unchanged.
func NoFold(s string) string { return s }

// ASCIIFold lower-cases ASCII letters only, as Doxygen does when it builds
// its search keys.
func ASCIIFold(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			return asciiLower(s)
		}
	}
	return s
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// Normalizer maps raw identifier text to normalized key text. The same
// Normalizer must be used to build keys and to normalize queries.
type Normalizer struct {
	// Fold is applied before encoding. Defaults to ASCIIFold.
	Fold FoldFunc
}

// Normalize returns the normalized key for raw: Fold, then EncodeKey.
// The mapping is total; every input has exactly one key.
func (n *Normalizer) Normalize(raw string) string {
	fold := ASCIIFold
	if n != nil && n.Fold != nil {
		fold = n.Fold
	}
	return EncodeKey(fold(raw))
}

// Query normalizes user input. Surrounding whitespace is not part of an
// identifier and is dropped first.
func (n *Normalizer) Query(text string) string {
	return n.Normalize(strings.TrimSpace(text))
}

const hexDigits = "0123456789abcdef"

func isKeyByte(c byte) bool {
	return ('a' <= c && c <= 'z') || ('0' <= c && c <= '9')
}

// EncodeKey escapes every byte outside [a-z0-9] as '_' followed by two
// lowercase hex digits, e.g. "cut_path" becomes "cut_5fpath".
// Encoding preserves prefixes: a prefix of s encodes to a prefix of
// EncodeKey(s).
func EncodeKey(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isKeyByte(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isKeyByte(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('_')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return sb.String()
}

// DecodeKey reverses EncodeKey. Returns EINVALID for text EncodeKey
// cannot produce.
func DecodeKey(key string) (string, error) {
	if strings.IndexByte(key, '_') < 0 {
		for i := 0; i < len(key); i++ {
			if !isKeyByte(key[i]) {
				return "", Errorf(EINVALID, "invalid key byte %q at %d", key[i], i)
			}
		}
		return key, nil
	}

	b := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if isKeyByte(c) {
			b = append(b, c)
			continue
		}
		if c != '_' || i+2 >= len(key) {
			return "", Errorf(EINVALID, "invalid escape in key %q at %d", key, i)
		}
		hi, ok1 := unhex(key[i+1])
		lo, ok2 := unhex(key[i+2])
		if !ok1 || !ok2 {
			return "", Errorf(EINVALID, "invalid escape in key %q at %d", key, i)
		}
		b = append(b, hi<<4|lo)
		i += 2
	}
	return string(b), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// FirstRune decodes the first character of a normalized key.
// Returns false for an empty or malformed key.
func FirstRune(key string) (rune, bool) {
	if key == "" {
		return 0, false
	}
	if isKeyByte(key[0]) {
		return rune(key[0]), true
	}

	// An escaped character spans up to four escaped UTF-8 bytes.
	var buf []byte
	for i := 0; i+2 < len(key) && len(buf) < utf8.UTFMax; i += 3 {
		if key[i] != '_' {
			break
		}
		hi, ok1 := unhex(key[i+1])
		lo, ok2 := unhex(key[i+2])
		if !ok1 || !ok2 {
			return 0, false
		}
		buf = append(buf, hi<<4|lo)
		if utf8.FullRune(buf) {
			break
		}
	}
	if len(buf) == 0 {
		return 0, false
	}
	r, _ := utf8.DecodeRune(buf)
	return r, true
}
