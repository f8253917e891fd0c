package discovery

import (
	"path"
	"strings"

	"batrun/internal/domain"
)

// Filter filters test cases by identity pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterUnits keeps the test functions whose identity "<unitId>::<function>"
// matches pattern. Units left without any test function are dropped.
func (f *Filter) FilterUnits(units []domain.TestUnit, pattern string) []domain.TestUnit {
	if pattern == "" {
		return units
	}

	var filtered []domain.TestUnit
	for _, unit := range units {
		var functions []string
		for _, tc := range unit.Cases() {
			if f.Match(tc.ID(), pattern) {
				functions = append(functions, tc.Function)
			}
		}
		if len(functions) == 0 {
			continue
		}
		unit.Functions = functions
		filtered = append(filtered, unit)
	}
	return filtered
}

// Match reports whether a test identity matches pattern using wildcard matching.
// Supports patterns like "net/*::test_ping" or "*dhcp*"
func (f *Filter) Match(id, pattern string) bool {
	if pattern == "" {
		return true
	}

	// Try to match using path.Match (supports * and ? wildcards)
	if matched, err := path.Match(pattern, id); err == nil && matched {
		return true
	}

	// path.Match stops "*" at slashes, so patterns like "*dhcp*" fall back to
	// checking that every literal part appears in order
	if strings.Contains(pattern, "*") {
		rest := id
		hasNonEmptyPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasNonEmptyPart = true
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
		}
		return hasNonEmptyPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(id, pattern)
	}
	return false
}
