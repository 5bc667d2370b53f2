// Package selector parses field selectors and groups them for partial
// encoding.
//
// A selector uses JSON pointer syntax: "" selects the whole value, "/a/b/0"
// selects field or key "0" inside "b" inside "a". "~1" escapes "/" and "~0"
// escapes "~" within a segment.
package selector

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidSelector    = errors.New("invalid selector")
	ErrInvalidSelectorSet = errors.New("invalid selector set")
)

// Path is a parsed selector. The empty path selects the whole value.
type Path []string

// Parse parses one selector.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("%w %q: must start with '/'", ErrInvalidSelector, s)
	}
	parts := strings.Split(s[1:], "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		seg, err := unescape(part)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, s, err)
		}
		p[i] = seg
	}
	return p, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, "~") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", errors.New("dangling '~'")
		}
		i++
		switch s[i] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("bad escape '~%c'", s[i])
		}
	}
	return b.String(), nil
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// String formats p back into selector syntax.
func (p Path) String() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(escaper.Replace(seg))
	}
	return b.String()
}

// IsEmpty reports whether p selects the whole value.
func (p Path) IsEmpty() bool { return len(p) == 0 }

// Compare orders paths segment by segment; a path sorts before any longer
// path it prefixes.
func Compare(a, b Path) int {
	return slices.Compare(a, b)
}

// Normalize sorts paths and removes duplicates. The input slice is reused.
func Normalize(paths []Path) []Path {
	slices.SortFunc(paths, Compare)
	return slices.CompactFunc(paths, func(a, b Path) bool { return Compare(a, b) == 0 })
}

// ParseAll parses selectors and returns them normalized. No selectors at all
// is treated as the single whole-value selector.
func ParseAll(selectors ...string) ([]Path, error) {
	if len(selectors) == 0 {
		return []Path{{}}, nil
	}
	paths := make([]Path, 0, len(selectors))
	for _, s := range selectors {
		p, err := Parse(s)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return Normalize(paths), nil
}

// IsWhole reports whether paths is exactly the whole-value selector.
func IsWhole(paths []Path) bool {
	return len(paths) == 1 && paths[0].IsEmpty()
}
