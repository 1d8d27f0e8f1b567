package util

import (
	"path"
	"sort"
	"strings"
)

// NormalizeRelPath cleans a project-relative path into slash form with no
// leading "./" or "/". The project root normalizes to "".
func NormalizeRelPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean("/" + trimmed)
	return strings.TrimPrefix(clean, "/")
}

// HasPathPrefix returns true when path equals prefix or is contained within prefix.
// An empty prefix contains every path.
func HasPathPrefix(p, prefix string) bool {
	p = NormalizeRelPath(p)
	prefix = NormalizeRelPath(prefix)
	if prefix == "" {
		return true
	}
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SplitList splits a newline-delimited preference value, trimming entries and
// dropping blanks.
func SplitList(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	return strings.Join(items, "\n")
}
