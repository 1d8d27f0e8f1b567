package config

import (
	"time"
)

// DefaultFile is the configuration file name looked up in the config dir and
// the project root.
const DefaultFile = "csslint.toml"

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	DB            Database      `toml:"db"`
	Projects      Projects      `toml:"projects"`
	Preferences   Preferences   `toml:"preferences"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	ConfigDir   string `toml:"config_dir"`
	StateDir    string `toml:"state_dir"`
	DatabaseDir string `toml:"database_dir"`
}

type Database struct {
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Projects struct {
	Entries []ProjectEntry `toml:"entries"`
}

type ProjectEntry struct {
	Name string `toml:"name"`
	Root string `toml:"root"`
}

type Preferences struct {
	// File holds the instance scope, relative to the config dir.
	File string `toml:"file"`
}

type Exclude struct {
	// Dirs are globs matched against directory base names.
	Dirs []string `toml:"dirs"`
}

type Watch struct {
	Debounce        time.Duration `toml:"debounce"`
	BuildsPerSecond float64       `toml:"builds_per_second"`
	Burst           int           `toml:"burst"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
}
