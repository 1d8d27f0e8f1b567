package csslint

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed ruleset.toml
var defaultLibrary []byte

// RuleSpec describes one rule from the library resource.
type RuleSpec struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Desc     string `toml:"desc"`
	Browsers string `toml:"browsers"`
	// Always rules run regardless of the options object.
	Always bool `toml:"always"`
	// Limit is the threshold for counting rules; zero keeps the default.
	Limit int `toml:"limit"`
}

type libraryFile struct {
	Version int        `toml:"version"`
	Rules   []RuleSpec `toml:"rule"`
}

type boundRule struct {
	spec  RuleSpec
	check checkFunc
}

// Library is a decoded rule library with every rule bound to its check.
type Library struct {
	rules []boundRule
}

// LoadLibrary decodes data and binds each rule id. Malformed input, an
// unsupported version, a duplicate id or an id with no check is an error.
func LoadLibrary(data []byte) (*Library, error) {
	var file libraryFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("decode rule library: %w", err)
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported rule library version %d", file.Version)
	}

	lib := &Library{rules: make([]boundRule, 0, len(file.Rules))}
	seen := make(map[string]bool, len(file.Rules))
	for _, spec := range file.Rules {
		spec.ID = strings.ToLower(strings.TrimSpace(spec.ID))
		if spec.ID == "" {
			return nil, fmt.Errorf("rule library entry without id")
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("duplicate rule id %q", spec.ID)
		}
		check, ok := checks[spec.ID]
		if !ok {
			return nil, fmt.Errorf("rule %q has no implementation", spec.ID)
		}
		seen[spec.ID] = true
		lib.rules = append(lib.rules, boundRule{spec: spec, check: check})
	}
	return lib, nil
}

// Rules returns the library entries in declaration order.
func (l *Library) Rules() []RuleSpec {
	out := make([]RuleSpec, len(l.rules))
	for i, r := range l.rules {
		out[i] = r.spec
	}
	return out
}

func (r RuleSpec) limit(def int) int {
	if r.Limit > 0 {
		return r.Limit
	}
	return def
}
