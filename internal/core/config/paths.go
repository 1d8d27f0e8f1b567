package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot     string
	ConfigDir       string
	StateDir        string
	DatabaseDir     string
	DBPath          string
	PreferencesPath string
}

func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot := strings.TrimSpace(cfg.Paths.ProjectRoot)
	if projectRoot != "" {
		projectRoot = ResolveRelative(cwd, projectRoot)
	} else {
		root, err := DetectProjectRoot([]string{cwd})
		if err != nil {
			return ResolvedPaths{}, err
		}
		projectRoot = root
	}

	configDir := ResolveRelative(projectRoot, cfg.Paths.ConfigDir)
	stateDir := ResolveRelative(projectRoot, cfg.Paths.StateDir)
	databaseDir := ResolveRelative(projectRoot, cfg.Paths.DatabaseDir)

	return ResolvedPaths{
		ProjectRoot:     filepath.Clean(projectRoot),
		ConfigDir:       filepath.Clean(configDir),
		StateDir:        filepath.Clean(stateDir),
		DatabaseDir:     filepath.Clean(databaseDir),
		DBPath:          ResolveRelative(databaseDir, cfg.DB.Path),
		PreferencesPath: ResolveRelative(configDir, cfg.Preferences.File),
	}, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate to the first directory
// holding a root marker, falling back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		".git",
		filepath.Join("data", "config", DefaultFile),
		DefaultFile,
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}

// Locate returns the configuration file to load: explicit wins, then the
// config dir and the project root. "" means none exists.
func Locate(explicit, cwd string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	root, err := DetectProjectRoot([]string{cwd})
	if err != nil {
		return ""
	}
	for _, candidate := range []string{
		filepath.Join(root, "data", "config", DefaultFile),
		filepath.Join(root, DefaultFile),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
