package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[paths]
state_dir = "var/state"

[db]
path = "lint.db"
busy_timeout = "2s"

[[projects.entries]]
name = "site"
root = "web/site"

[[projects.entries]]
name = "admin"
root = "/srv/admin"

[preferences]
file = "prefs.toml"

[exclude]
dirs = [".git", "vendor*"]

[watch]
debounce = "1s"
builds_per_second = 0.5
burst = 3

[observability]
enabled = true
address = "0.0.0.0:9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DB.Path != "lint.db" || cfg.DB.BusyTimeout != 2*time.Second {
		t.Errorf("unexpected db section: %+v", cfg.DB)
	}
	if len(cfg.Projects.Entries) != 2 || cfg.Projects.Entries[0].Name != "site" {
		t.Errorf("unexpected projects: %+v", cfg.Projects.Entries)
	}
	if cfg.Watch.Debounce != time.Second || cfg.Watch.BuildsPerSecond != 0.5 || cfg.Watch.Burst != 3 {
		t.Errorf("unexpected watch section: %+v", cfg.Watch)
	}
	if len(cfg.Exclude.Dirs) != 2 || cfg.Exclude.Dirs[1] != "vendor*" {
		t.Errorf("unexpected exclude dirs: %v", cfg.Exclude.Dirs)
	}
	if cfg.Paths.ConfigDir != "data/config" {
		t.Errorf("expected default config dir, got %q", cfg.Paths.ConfigDir)
	}
	if !cfg.Observability.Enabled || cfg.Observability.Address != "0.0.0.0:9000" {
		t.Errorf("unexpected observability section: %+v", cfg.Observability)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version = 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.DB.Path != "markers.db" {
		t.Errorf("Expected default db path markers.db, got %q", cfg.DB.Path)
	}
	if len(cfg.Exclude.Dirs) != 2 {
		t.Errorf("Expected default exclude dirs, got %v", cfg.Exclude.Dirs)
	}
	if cfg.Watch.Burst != 1 {
		t.Errorf("Expected default burst 1, got %d", cfg.Watch.Burst)
	}

	def := Default()
	if def.Preferences.File != "preferences.toml" || def.Version != 1 {
		t.Errorf("unexpected default config: %+v", def)
	}
}

func TestLoadEmptyExcludeDirsStaysEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[exclude]\ndirs = []\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Exclude.Dirs) != 0 {
		t.Fatalf("explicit empty list must not be defaulted, got %v", cfg.Exclude.Dirs)
	}
}

func TestLoadError(t *testing.T) {
	_, err := Load("nonexistent.toml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}

	_, err = Load(writeConfig(t, "bad = toml = format"))
	if err == nil {
		t.Error("Expected error for malformed TOML")
	}
}

func TestLoadRejectsInvalidSections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"version", "version = 3\n", "unsupported config version"},
		{"project name", "[[projects.entries]]\nname = \"a/b\"\nroot = \"x\"\n", "path separators"},
		{"project root", "[[projects.entries]]\nname = \"a\"\n", "root must not be empty"},
		{"duplicate project", "[[projects.entries]]\nname = \"a\"\nroot = \"x\"\n[[projects.entries]]\nname = \"a\"\nroot = \"y\"\n", "duplicate project name"},
		{"bad glob", "[exclude]\ndirs = [\"[unclosed\"]\n", "not a valid glob"},
		{"negative rate", "[watch]\nbuilds_per_second = -1.0\n", "builds_per_second"},
		{"address", "[observability]\nenabled = true\naddress = \"nohost\"\n", "host:port"},
		{"tracing endpoint", "[observability]\nenable_tracing = true\n", "otlp_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CSSLINT_DB_PATH", "/tmp/other.db")
	t.Setenv("CSSLINT_WATCH_DEBOUNCE", "250ms")
	t.Setenv("CSSLINT_WATCH_BURST", "not-a-number")
	t.Setenv("CSSLINT_OBSERVABILITY_ENABLED", "TRUE")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.DB.Path != "/tmp/other.db" {
		t.Errorf("expected db path override, got %q", cfg.DB.Path)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce override, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.Burst != 1 {
		t.Errorf("unparsable override must be ignored, got %d", cfg.Watch.Burst)
	}
	if !cfg.Observability.Enabled {
		t.Error("expected observability to be enabled")
	}
}

func TestResolveProjects(t *testing.T) {
	cfg := Default()
	got := ResolveProjects(cfg, "/work")
	if len(got) != 1 || got[0].Name != DefaultProjectName || got[0].Root != "/work" {
		t.Fatalf("unexpected implicit project: %+v", got)
	}

	cfg.Projects.Entries = []ProjectEntry{{Name: "site", Root: "web"}, {Name: "abs", Root: "/srv/abs"}}
	got = ResolveProjects(cfg, "/work")
	if got[0].Root != filepath.Join("/work", "web") || got[1].Root != "/srv/abs" {
		t.Fatalf("unexpected roots: %+v", got)
	}
}
