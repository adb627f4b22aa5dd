package discovery

import (
	"path/filepath"
	"strings"
)

// Filter selects test sources by file name pattern
type Filter struct {
	pattern string
}

// NewFilter creates a new Filter. An empty pattern matches everything.
func NewFilter(pattern string) *Filter {
	return &Filter{pattern: pattern}
}

// Pattern returns the pattern the filter was created with
func (f *Filter) Pattern() string {
	return f.pattern
}

// Match reports whether the source at path is selected.
// Supports patterns like "*_error.c" or "*struct*"; a pattern without
// wildcards matches as a substring of the file name.
func (f *Filter) Match(path string) bool {
	if f == nil || f.pattern == "" {
		return true
	}
	pattern := f.pattern

	// Match against just the filename
	name := filepath.Base(path)

	matched, err := filepath.Match(pattern, name)
	if err == nil && matched {
		return true
	}

	// filepath.Match anchors both ends; fall back to checking every
	// non-empty part between wildcards as a substring
	if strings.Contains(pattern, "*") {
		hasPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasPart = true
			if !strings.Contains(name, part) {
				return false
			}
		}
		return hasPart
	}

	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}

// FilterByName keeps the paths whose file name matches the filter
func (f *Filter) FilterByName(paths []string) []string {
	var filtered []string
	for _, path := range paths {
		if f.Match(path) {
			filtered = append(filtered, path)
		}
	}
	return filtered
}
