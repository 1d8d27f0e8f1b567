package config

import (
	"testing"
)

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Version = 2
	cfg.Watch.Burst = 0
	cfg.Exclude.Dirs = []string{"a/b"}

	errs := Validate(cfg)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateDefaultsAreValid(t *testing.T) {
	if errs := Validate(Default()); len(errs) != 0 {
		t.Fatalf("default configuration must validate, got %v", errs)
	}
}
