package options

import (
	"strings"
	"testing"
)

func TestCatalogKeysAreStable(t *testing.T) {
	all := All()
	if len(all) != 31 {
		t.Fatalf("expected 31 catalog entries, got %d", len(all))
	}
	seen := make(map[string]bool, len(all))
	for _, o := range all {
		if o.Key != strings.ToLower(o.Key) || strings.Contains(o.Key, "_") {
			t.Errorf("option key %q is not lowercase-hyphenated", o.Key)
		}
		if seen[o.Key] {
			t.Errorf("duplicate option key %q", o.Key)
		}
		seen[o.Key] = true
		if o.Description == "" {
			t.Errorf("option %q has no description", o.Key)
		}
	}
}

func TestDefaultPreferencesEnableCorrectnessGroup(t *testing.T) {
	defaults := DefaultPreferences()
	want := []string{"box-model", "display-property-grouping", "duplicate-properties", "empty-rules", "known-properties"}
	if len(defaults) != len(want) {
		t.Fatalf("expected %d defaults, got %v", len(want), defaults)
	}
	for _, key := range want {
		if defaults[key] != "true" {
			t.Errorf("expected %s=true in defaults, got %q", key, defaults[key])
		}
	}
}

func TestLookup(t *testing.T) {
	o, ok := Lookup(" Duplicate-Properties ")
	if !ok || o.Key != "duplicate-properties" {
		t.Fatalf("expected lookup to normalize key, got %+v ok=%v", o, ok)
	}
	if _, ok := Lookup("no-such-rule"); ok {
		t.Fatal("expected unknown key lookup to fail")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		kind    ValueKind
		raw     string
		want    Value
		wantErr bool
	}{
		{name: "bool true", kind: Boolean, raw: "true", want: BoolValue(true)},
		{name: "bool mixed case", kind: Boolean, raw: "TRUE", want: BoolValue(true)},
		{name: "bool false", kind: Boolean, raw: "false", want: BoolValue(false)},
		{name: "bool garbage", kind: Boolean, raw: "yes", want: BoolValue(false)},
		{name: "string", kind: String, raw: "ie6", want: StringValue("ie6")},
		{name: "integer", kind: Integer, raw: " 2 ", want: IntValue(2)},
		{name: "integer invalid", kind: Integer, raw: "two", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.kind, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%v, %q) = %v, want %v", tt.kind, tt.raw, got, tt.want)
			}
		})
	}
}

func TestMappingObjectAndClone(t *testing.T) {
	m := Mapping{
		"important": BoolValue(true),
		"ids":       IntValue(2),
	}
	obj := m.Object()
	if obj["important"] != true || obj["ids"] != 2 {
		t.Fatalf("unexpected options object %#v", obj)
	}

	clone := m.Clone()
	delete(clone, "ids")
	if _, ok := m["ids"]; !ok {
		t.Fatal("expected clone to be independent of the original")
	}
	if keys := m.Keys(); keys[0] != "ids" || keys[1] != "important" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}
}
