package doxygen

import (
	"fmt"
	"strconv"
	"strings"
)

// scanner parses the subset of JavaScript literal syntax found in shard
// files: arrays (with elisions), quoted strings, integers and the null,
// undefined, true and false literals.
type scanner struct {
	src string
	pos int
}

func (s *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", s.pos, fmt.Sprintf(format, args...))
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		case '/':
			if !s.skipComment() {
				return
			}
		default:
			return
		}
	}
}

func (s *scanner) skipComment() bool {
	rest := s.src[s.pos:]
	switch {
	case strings.HasPrefix(rest, "//"):
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			s.pos += i + 1
		} else {
			s.pos = len(s.src)
		}
		return true
	case strings.HasPrefix(rest, "/*"):
		if i := strings.Index(rest[2:], "*/"); i >= 0 {
			s.pos += i + 4
		} else {
			s.pos = len(s.src)
		}
		return true
	}
	return false
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) expect(c byte) error {
	s.skipSpace()
	if s.peek() != c {
		return s.errorf("expected %q", c)
	}
	s.pos++
	return nil
}

func (s *scanner) ident() (string, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || (s.pos > start && '0' <= c && c <= '9') {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start {
		return "", s.errorf("expected identifier")
	}
	return s.src[start:s.pos], nil
}

// value parses one literal. Arrays become []any, null and undefined
// become nil and true and false become bool.
func (s *scanner) value() (any, error) {
	s.skipSpace()
	switch c := s.peek(); {
	case c == '[':
		return s.array()
	case c == '\'' || c == '"':
		return s.str()
	case c == '-' || ('0' <= c && c <= '9'):
		return s.number()
	case 'a' <= c && c <= 'z':
		return s.keyword()
	case c == 0:
		return nil, s.errorf("unexpected end of input")
	default:
		return nil, s.errorf("unexpected %q", c)
	}
}

func (s *scanner) keyword() (any, error) {
	start := s.pos
	word, err := s.ident()
	if err != nil {
		return nil, err
	}
	switch word {
	case "null", "undefined":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	s.pos = start
	return nil, s.errorf("unexpected %q", word)
}

func (s *scanner) array() ([]any, error) {
	if err := s.expect('['); err != nil {
		return nil, err
	}
	var items []any
	for {
		s.skipSpace()
		switch s.peek() {
		case ']':
			s.pos++
			return items, nil
		case ',':
			// Elided element.
			s.pos++
			items = append(items, nil)
			continue
		}
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		s.skipSpace()
		switch s.peek() {
		case ',':
			s.pos++
		case ']':
		default:
			return nil, s.errorf("expected ',' or ']'")
		}
	}
}

func (s *scanner) str() (string, error) {
	quote := s.src[s.pos]
	s.pos++
	var sb strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == quote:
			s.pos++
			return sb.String(), nil
		case c == '\n':
			return "", s.errorf("newline in string")
		case c == '\\':
			if s.pos+1 >= len(s.src) {
				return "", s.errorf("unterminated escape")
			}
			s.pos++
			switch e := s.src[s.pos]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'u':
				if s.pos+4 >= len(s.src) {
					return "", s.errorf("short unicode escape")
				}
				n, err := strconv.ParseUint(s.src[s.pos+1:s.pos+5], 16, 16)
				if err != nil {
					return "", s.errorf("bad unicode escape")
				}
				sb.WriteRune(rune(n))
				s.pos += 4
			default:
				sb.WriteByte(e)
			}
			s.pos++
		default:
			sb.WriteByte(c)
			s.pos++
		}
	}
	return "", s.errorf("unterminated string")
}

func (s *scanner) number() (int, error) {
	start := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	for s.pos < len(s.src) && '0' <= s.src[s.pos] && s.src[s.pos] <= '9' {
		s.pos++
	}
	n, err := strconv.Atoi(s.src[start:s.pos])
	if err != nil {
		return 0, s.errorf("bad number %q", s.src[start:s.pos])
	}
	return n, nil
}
