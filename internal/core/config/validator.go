package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	if cfg.DB.BusyTimeout < 0 {
		return fmt.Errorf("db.busy_timeout must not be negative")
	}
	return nil
}

func validateProjects(cfg *Config) error {
	seenNames := make(map[string]bool, len(cfg.Projects.Entries))
	for i, entry := range cfg.Projects.Entries {
		ref := fmt.Sprintf("projects.entries[%d]", i)
		name := strings.TrimSpace(entry.Name)
		root := strings.TrimSpace(entry.Root)
		if name == "" {
			return fmt.Errorf("%s.name must not be empty", ref)
		}
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%s.name %q must not contain path separators", ref, name)
		}
		if root == "" {
			return fmt.Errorf("%s.root must not be empty", ref)
		}
		if seenNames[name] {
			return fmt.Errorf("duplicate project name %q", name)
		}
		seenNames[name] = true
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if strings.ContainsAny(pattern, `/\`) {
			return fmt.Errorf("exclude.dirs[%d] %q matches base names and must not contain path separators", i, pattern)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q is not a valid glob: %w", i, pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.BuildsPerSecond < 0 {
		return fmt.Errorf("watch.builds_per_second must not be negative")
	}
	if cfg.Watch.Burst < 1 {
		return fmt.Errorf("watch.burst must be at least 1")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	obs := cfg.Observability
	if obs.Enabled {
		if _, _, err := net.SplitHostPort(obs.Address); err != nil {
			return fmt.Errorf("observability.address %q must be host:port: %w", obs.Address, err)
		}
	}
	if obs.EnableTracing && strings.TrimSpace(obs.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when observability.enable_tracing is true")
	}
	return nil
}

// Validate reports every problem with cfg.
func Validate(cfg *Config) []error {
	var errs []error

	if err := validateVersion(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateProjects(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateDatabase(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateExclude(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateWatch(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateObservability(cfg); err != nil {
		errs = append(errs, err)
	}
	return errs
}
