package scanner

import (
	"fmt"
	"strings"
)

// Pattern is an ignore rule with at most one '*' wildcard. A pattern
// matches when it matches the whole path or any single path segment,
// so "node_modules" excludes the directory at any depth and "*.min.js"
// excludes minified files everywhere.
type Pattern struct {
	raw    string
	prefix string
	suffix string
	exact  bool
}

// CompilePattern parses an ignore pattern. More than one wildcard is an
// error; richer glob syntax is deliberately out of scope.
func CompilePattern(raw string) (Pattern, error) {
	if raw == "" {
		return Pattern{}, fmt.Errorf("empty ignore pattern")
	}
	switch strings.Count(raw, "*") {
	case 0:
		return Pattern{raw: raw, exact: true}, nil
	case 1:
		i := strings.Index(raw, "*")
		return Pattern{raw: raw, prefix: raw[:i], suffix: raw[i+1:]}, nil
	default:
		return Pattern{}, fmt.Errorf("ignore pattern %q: at most one '*' allowed", raw)
	}
}

// CompilePatterns parses a pattern list, failing on the first invalid
// entry.
func CompilePatterns(raw []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		p, err := CompilePattern(r)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Match reports whether the pattern matches a repository-relative path.
func (p Pattern) Match(path string) bool {
	if p.matchSegment(path) {
		return true
	}
	for _, seg := range strings.Split(path, "/") {
		if p.matchSegment(seg) {
			return true
		}
	}
	return false
}

func (p Pattern) matchSegment(s string) bool {
	if p.exact {
		return s == p.raw
	}
	return len(s) >= len(p.prefix)+len(p.suffix) &&
		strings.HasPrefix(s, p.prefix) &&
		strings.HasSuffix(s, p.suffix)
}

// String returns the original pattern text.
func (p Pattern) String() string {
	return p.raw
}
