package discovery

import (
	"path/filepath"
	"strings"

	"mvmtest/internal/domain"
)

// Filter narrows a discovered case list
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps cases whose name matches pattern.
// Supports patterns like "loop*" or "*string*"; a pattern without wildcards
// matches as a substring.
func (f *Filter) FilterByName(cases []domain.TestCase, pattern string) []domain.TestCase {
	if pattern == "" {
		return cases
	}

	var filtered []domain.TestCase
	for _, tc := range cases {
		if matchName(tc.Name, pattern) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// OnlyNames keeps cases listed in names, preserving discovery order.
func (f *Filter) OnlyNames(cases []domain.TestCase, names []string) []domain.TestCase {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	var filtered []domain.TestCase
	for _, tc := range cases {
		if _, ok := wanted[tc.Name]; ok {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// filepath.Match is anchored; "*print*" should also match "astprint_loop".
	// Every non-empty literal part must appear, in order.
	if strings.Contains(pattern, "?") {
		return false
	}
	rest := name
	found := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
		found = true
	}
	return found
}
