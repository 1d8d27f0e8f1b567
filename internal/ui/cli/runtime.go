package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"csslint/internal/core/app"
	"csslint/internal/core/config"
	"csslint/internal/core/errors"
	"csslint/internal/core/options"
	"csslint/internal/core/prefs"
)

// settings is the resolved configuration a command runs with.
type settings struct {
	cfg     *config.Config
	cfgPath string
	paths   config.ResolvedPaths
}

func loadSettings(opts *rootOptions) (settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return settings{}, errors.Wrap(err, errors.CodeIO, "detect working directory")
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		return settings{}, err
	}

	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return settings{}, errors.Wrap(err, errors.CodeValidationError, "resolve runtime paths")
	}
	return settings{cfg: cfg, cfgPath: cfgPath, paths: paths}, nil
}

// loadConfig reads the located configuration file, or the defaults when
// none exists, and layers environment overrides on top.
func loadConfig(explicit, cwd string) (*config.Config, string, error) {
	path := config.Locate(explicit, cwd)

	var cfg *config.Config
	if path == "" {
		slog.Debug("no configuration file found, using defaults", "cwd", cwd)
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "load config"), errors.CtxPath, path)
		}
		cfg = loaded
	}

	config.ApplyEnvOverrides(cfg)
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, "", errors.Wrap(stderrors.Join(errs...), errors.CodeValidationError, "invalid environment overrides")
	}
	return cfg, path, nil
}

type runtime struct {
	settings
	app *app.App
}

func openRuntime(opts *rootOptions) (*runtime, error) {
	s, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}
	a, err := app.New(s.cfg, s.paths, app.Options{})
	if err != nil {
		return nil, err
	}
	slog.Debug("runtime ready", "app", a.String(), "config", s.cfgPath)
	return &runtime{settings: s, app: a}, nil
}

func (r *runtime) Close() {
	if err := r.app.Close(); err != nil {
		slog.Warn("failed to close runtime", "error", err)
	}
}

// openPreferences opens only the preference store, for commands that do
// not touch projects or markers.
func openPreferences(opts *rootOptions) (*prefs.Store, error) {
	s, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}
	store, err := prefs.Open(s.paths.PreferencesPath, options.DefaultPreferences())
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "open preferences"), errors.CtxPath, s.paths.PreferencesPath)
	}
	return store, nil
}

func configureLogging(stderr io.Writer, uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := stderr
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "csslint", "csslint.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "csslint", "csslint.log")
	}

	return "csslint.log"
}
