package config

import (
	"path/filepath"
)

// DefaultProjectName names the implicit project used when no entries are
// configured.
const DefaultProjectName = "default"

// ResolveProjects returns the configured projects with absolute roots.
// Without entries the project root itself is the only project.
func ResolveProjects(cfg *Config, projectRoot string) []ProjectEntry {
	if len(cfg.Projects.Entries) == 0 {
		return []ProjectEntry{{Name: DefaultProjectName, Root: filepath.Clean(projectRoot)}}
	}
	out := make([]ProjectEntry, 0, len(cfg.Projects.Entries))
	for _, entry := range cfg.Projects.Entries {
		out = append(out, ProjectEntry{
			Name: entry.Name,
			Root: ResolveRelative(projectRoot, entry.Root),
		})
	}
	return out
}
