// Package options holds the fixed catalog of analysis options and the typed
// values parsed from preference strings.
package options

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind is the declared type of an option's value.
type ValueKind int

const (
	Boolean ValueKind = iota
	String
	Integer
)

func (k ValueKind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Integer:
		return "integer"
	default:
		return "unknown"
	}
}

// Group is the rule category an option belongs to.
type Group string

const (
	GroupCorrectness     Group = "correctness"
	GroupCompatibility   Group = "compatibility"
	GroupPerformance     Group = "performance"
	GroupMaintainability Group = "maintainability"
	GroupAccessibility   Group = "accessibility"
	GroupStructural      Group = "structural"
)

// Option is one catalog entry. Key doubles as the preference key and the
// rule id understood by the analysis engine.
type Option struct {
	Key         string
	Description string
	Kind        ValueKind
	Group       Group
}

func (o Option) String() string {
	return o.Key + "[" + o.Description + "]"
}

var catalog = []Option{
	// Possible errors.
	{"box-model", "Beware of box model size", Boolean, GroupCorrectness},
	{"display-property-grouping", "Require properties appropriate for display", Boolean, GroupCorrectness},
	{"duplicate-properties", "Disallow duplicate properties", Boolean, GroupCorrectness},
	{"empty-rules", "Disallow empty rules", Boolean, GroupCorrectness},
	{"known-properties", "Require use of known properties", Boolean, GroupCorrectness},

	// Cross-browser compatibility.
	{"adjoining-classes", "Disallow adjoining classes", Boolean, GroupCompatibility},
	{"box-sizing", "Disallow box-sizing", Boolean, GroupCompatibility},
	{"compatible-vendor-prefixes", "Require compatible vendor prefixes", Boolean, GroupCompatibility},
	{"gradients", "Require all gradient definitions", Boolean, GroupCompatibility},
	{"text-indent", "Disallow negative text-indent", Boolean, GroupCompatibility},
	{"vendor-prefix", "Require standard property with vendor prefix", Boolean, GroupCompatibility},
	{"fallback-colors", "Require fallback colors", Boolean, GroupCompatibility},
	{"star-property-hack", "Disallow star hack", Boolean, GroupCompatibility},
	{"underscore-property-hack", "Disallow underscore hack", Boolean, GroupCompatibility},
	{"bulletproof-font-face", "Bulletproof font-face", Boolean, GroupCompatibility},

	// Runtime performance and code size.
	{"font-faces", "Don't use too many web fonts", Boolean, GroupPerformance},
	{"import", "Disallow @import", Boolean, GroupPerformance},
	{"regex-selectors", "Disallow selectors that look like regular expressions", Boolean, GroupPerformance},
	{"universal-selector", "Disallow universal selector", Boolean, GroupPerformance},
	{"unqualified-attributes", "Disallow unqualified attribute selectors", Boolean, GroupPerformance},
	{"zero-units", "Disallow units for zero values", Boolean, GroupPerformance},
	{"overqualified-elements", "Disallow overqualified elements", Boolean, GroupPerformance},
	{"shorthand", "Require shorthand properties", Boolean, GroupPerformance},
	{"duplicate-background-images", "Disallow duplicate background images", Boolean, GroupPerformance},

	// Maintainability and duplication.
	{"floats", "Disallow too many floats", Boolean, GroupMaintainability},
	{"font-sizes", "Don't use too many font-size declarations", Boolean, GroupMaintainability},
	{"ids", "Disallow IDs in selectors", Boolean, GroupMaintainability},
	{"important", "Disallow !important", Boolean, GroupMaintainability},

	{"outline-none", "Disallow outline:none", Boolean, GroupAccessibility},

	// OOCSS.
	{"qualified-headings", "Disallow qualified headings", Boolean, GroupStructural},
	{"unique-headings", "Headings should only be defined once", Boolean, GroupStructural},
}

var byKey = func() map[string]Option {
	m := make(map[string]Option, len(catalog))
	for _, o := range catalog {
		m[o.Key] = o
	}
	return m
}()

// All returns the catalog in declaration order.
func All() []Option {
	out := make([]Option, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by key.
func Lookup(key string) (Option, bool) {
	o, ok := byKey[strings.ToLower(strings.TrimSpace(key))]
	return o, ok
}

// DefaultEnabled lists the options switched on at first activation.
func DefaultEnabled() []Option {
	out := make([]Option, 0, 5)
	for _, o := range catalog {
		if o.Group == GroupCorrectness {
			out = append(out, o)
		}
	}
	return out
}

// DefaultPreferences is the preference bootstrap: every default-enabled
// option set to "true".
func DefaultPreferences() map[string]string {
	defaults := make(map[string]string)
	for _, o := range DefaultEnabled() {
		defaults[o.Key] = "true"
	}
	return defaults
}

// Value is a parsed option value tagged with its kind.
type Value struct {
	Kind ValueKind
	Bool bool
	Str  string
	Int  int
}

func BoolValue(b bool) Value { return Value{Kind: Boolean, Bool: b} }
func StringValue(s string) Value { return Value{Kind: String, Str: s} }
func IntValue(i int) Value { return Value{Kind: Integer, Int: i} }

// Native returns the value in the shape the engine's options object expects.
func (v Value) Native() any {
	switch v.Kind {
	case Boolean:
		return v.Bool
	case Integer:
		return v.Int
	default:
		return v.Str
	}
}

// Encode renders the value back into its preference string.
func (v Value) Encode() string {
	switch v.Kind {
	case Boolean:
		return strconv.FormatBool(v.Bool)
	case Integer:
		return strconv.Itoa(v.Int)
	default:
		return v.Str
	}
}

func (v Value) String() string {
	return v.Kind.String() + ":" + v.Encode()
}

// Parse converts a raw preference string according to kind. Booleans are
// true only for a case-insensitive "true"; anything else reads as false.
func Parse(kind ValueKind, raw string) (Value, error) {
	switch kind {
	case Boolean:
		return BoolValue(strings.EqualFold(strings.TrimSpace(raw), "true")), nil
	case String:
		return StringValue(raw), nil
	case Integer:
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("parse integer option value %q: %w", raw, err)
		}
		return IntValue(i), nil
	default:
		return Value{}, fmt.Errorf("unsupported option kind %d", kind)
	}
}

// Mapping is the full set of applied option values keyed by option key. It
// is rebuilt on every configuration change, never patched.
type Mapping map[string]Value

// Clone returns an independent copy.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Object builds the engine options object.
func (m Mapping) Object() map[string]any {
	obj := make(map[string]any, len(m))
	for k, v := range m {
		obj[k] = v.Native()
	}
	return obj
}

// Keys returns the applied keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
