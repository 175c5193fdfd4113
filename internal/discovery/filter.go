package discovery

import (
	"path"
	"strings"
)

// Filter filters test files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the tests whose file name matches pattern.
// Supports patterns like "*UserTest.scala" or "*Payment*"; a pattern without
// wildcards matches as a substring, and a pattern containing "/" is matched
// against the whole path instead of the file name.
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	if pattern == "" {
		return tests
	}

	filtered := make([]string, 0, len(tests))
	for _, test := range tests {
		if matchName(test, pattern) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

func matchName(test, pattern string) bool {
	name := path.Base(test)
	if strings.Contains(pattern, "/") {
		name = test
	}

	if ok, err := path.Match(pattern, name); err == nil && ok {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// Loose match: every literal part of a "*" pattern must appear, in order
	if !strings.Contains(pattern, "*") || strings.Contains(pattern, "/") {
		return false
	}
	rest := name
	matchedAny := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
		matchedAny = true
	}
	return matchedAny
}
