// Package exclusion decides whether a workspace path is skipped entirely.
package exclusion

import (
	"log/slog"
	"regexp"

	"csslint/internal/core/prefs"
	"csslint/internal/shared/util"
)

// Matcher holds a fixed, ordered set of full-string regular expressions.
type Matcher struct {
	patterns []string
	compiled []*regexp.Regexp
}

// New compiles patterns. Invalid patterns are logged and ignored.
func New(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			slog.Warn("ignoring invalid exclusion pattern", "pattern", p, "error", err)
			continue
		}
		m.patterns = append(m.patterns, p)
		m.compiled = append(m.compiled, re)
	}
	return m
}

// FromPreferences reads the exclusion list once. An absent or empty value
// excludes nothing.
func FromPreferences(src prefs.Source) *Matcher {
	if src == nil {
		return New(nil)
	}
	raw, _ := src.Get(prefs.KeyExcludePathRegexes)
	return New(util.SplitList(raw))
}

// IsExcluded reports whether path fully matches any pattern.
func (m *Matcher) IsExcluded(path string) bool {
	if m == nil {
		return false
	}
	for _, re := range m.compiled {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Patterns returns the accepted patterns in order.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}
