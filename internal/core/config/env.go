package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CSSLINT_[SECTION]_[KEY] (e.g., CSSLINT_WATCH_DEBOUNCE).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "CSSLINT_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.ConfigDir, "CSSLINT_PATHS_CONFIG_DIR")
	setEnvString(&cfg.Paths.StateDir, "CSSLINT_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.DatabaseDir, "CSSLINT_PATHS_DATABASE_DIR")

	// Database
	setEnvString(&cfg.DB.Path, "CSSLINT_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "CSSLINT_DB_BUSY_TIMEOUT")

	setEnvString(&cfg.Preferences.File, "CSSLINT_PREFERENCES_FILE")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CSSLINT_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.BuildsPerSecond, "CSSLINT_WATCH_BUILDS_PER_SECOND")
	setEnvInt(&cfg.Watch.Burst, "CSSLINT_WATCH_BURST")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "CSSLINT_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "CSSLINT_OBSERVABILITY_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CSSLINT_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "CSSLINT_OBSERVABILITY_ENABLE_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
