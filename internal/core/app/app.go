// Package app wires the workspace, preference store, marker store, analysis
// handle and builder into the operations the command line drives.
package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"csslint/internal/core/analysis"
	"csslint/internal/core/builder"
	"csslint/internal/core/changeset"
	"csslint/internal/core/config"
	"csslint/internal/core/errors"
	"csslint/internal/core/nature"
	"csslint/internal/core/options"
	"csslint/internal/core/ports"
	"csslint/internal/core/prefs"
	"csslint/internal/core/workspace"
	"csslint/internal/data/buildstate"
	"csslint/internal/data/markers"
	"csslint/internal/shared/util"

	"github.com/spf13/afero"
)

const limiterTTL = 10 * time.Minute

// BuildEvent is published after every build attempt.
type BuildEvent struct {
	Report builder.Report
	Err    error
	At     time.Time
}

// Options override the defaults of New.
type Options struct {
	// FS backs the workspace and the build state. Defaults to the OS.
	FS afero.Fs
	// EngineFactory replaces the built-in analysis engine.
	EngineFactory analysis.EngineFactory
}

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	Workspace *workspace.Workspace
	Prefs     *prefs.Store
	Handle    *analysis.Handle
	Builder   *builder.Builder
	Natures   *nature.Manager

	markers *markers.Store
	state   ports.BuildStateStore

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	limiters *util.LimiterRegistry

	subsMu sync.RWMutex
	subs   map[int]func(BuildEvent)
	nextID int
}

func New(cfg *config.Config, paths config.ResolvedPaths, opts Options) (*App, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	ws, err := workspace.New(fsys, toWorkspaceEntries(config.ResolveProjects(cfg, paths.ProjectRoot)), cfg.Exclude.Dirs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "build workspace")
	}

	store, err := prefs.Open(paths.PreferencesPath, options.DefaultPreferences())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "open preferences")
	}

	state, err := buildstate.New(fsys, filepath.Join(paths.StateDir, "builds"))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "open build state")
	}

	markerStore, err := markers.Open(paths.DBPath, cfg.DB.BusyTimeout)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "open marker store")
	}

	handle := analysis.New(store, opts.EngineFactory)

	return &App{
		Config:    cfg,
		Paths:     paths,
		Workspace: ws,
		Prefs:     store,
		Handle:    handle,
		Builder:   builder.New(handle, markerStore, store),
		Natures:   nature.NewManager(markerStore),
		markers:   markerStore,
		state:     state,
		locks:     make(map[string]*sync.Mutex),
		limiters:  util.NewLimiterRegistry(cfg.Watch.BuildsPerSecond, cfg.Watch.Burst, limiterTTL),
		subs:      make(map[int]func(BuildEvent)),
	}, nil
}

func toWorkspaceEntries(entries []config.ProjectEntry) []workspace.ProjectEntry {
	out := make([]workspace.ProjectEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, workspace.ProjectEntry{Name: e.Name, Root: e.Root})
	}
	return out
}

// Close releases the engine and the marker database.
func (a *App) Close() error {
	return stderrors.Join(a.Handle.Close(), a.markers.Close())
}

func (a *App) project(name string) (*workspace.Project, error) {
	p, ok := a.Workspace.Project(name)
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "unknown project"), errors.CtxProject, name)
	}
	return p, nil
}

func (a *App) lockFor(name string) *sync.Mutex {
	a.locksMu.Lock()
	defer a.locksMu.Unlock()
	l, ok := a.locks[name]
	if !ok {
		l = &sync.Mutex{}
		a.locks[name] = l
	}
	return l
}

// Build runs one pass over a participating project. Incremental passes use
// the delta against the last successful build and fall back to a full pass
// when none is recorded.
func (a *App) Build(ctx context.Context, name string, kind changeset.Kind) (builder.Report, error) {
	p, err := a.project(name)
	if err != nil {
		return builder.Report{Project: name, Kind: kind}, err
	}
	if !a.Natures.Enabled(p) {
		return builder.Report{Project: name, Kind: kind},
			errors.AddContext(errors.New(errors.CodeNotSupported, "lint is not enabled for project"), errors.CtxProject, name)
	}

	lock := a.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	report, err := a.buildLocked(ctx, p, kind)
	a.publish(BuildEvent{Report: report, Err: err, At: time.Now().UTC()})
	return report, err
}

func (a *App) buildLocked(ctx context.Context, p *workspace.Project, kind changeset.Kind) (builder.Report, error) {
	prev := a.state.Load(p.Name())
	curr, err := changeset.Capture(p, prev)
	if err != nil {
		return builder.Report{Project: p.Name(), Kind: kind},
			errors.AddContext(errors.Wrap(err, errors.CodeIO, "snapshot project"), errors.CtxProject, p.Name())
	}

	curr.Preferences = changeset.Fingerprint(a.Prefs.Entries())

	trigger := changeset.Trigger{Kind: kind}
	if prev != nil {
		delta := changeset.Diff(*prev, curr)
		trigger.Delta = &delta
		switch {
		case touchesDescription(delta):
			// Declared charsets may have changed for any file.
			trigger.Kind = changeset.Full
		case prev.Preferences != curr.Preferences:
			// Markers on unchanged files were produced under other options
			// or exclusions.
			slog.Info("preferences changed since last build", "project", p.Name())
			trigger.Kind = changeset.Full
		}
	}

	report, err := a.Builder.RunBuild(ctx, p, trigger, builder.LogMonitor{Project: p.Name()})
	if err != nil {
		return report, err
	}
	if err := a.state.Save(curr); err != nil {
		slog.Warn("failed to save build state", "project", p.Name(), "error", err)
	}
	return report, nil
}

func touchesDescription(delta changeset.Delta) bool {
	for _, e := range delta.Entries {
		if e.Path == workspace.DescriptionFile {
			return true
		}
	}
	return false
}

// BuildAll builds every participating project in name order. An engine
// failure stops the remaining projects.
func (a *App) BuildAll(ctx context.Context, kind changeset.Kind) ([]builder.Report, error) {
	var (
		reports []builder.Report
		errs    []error
	)
	for _, p := range a.Workspace.Projects() {
		if !a.Natures.Enabled(p) {
			slog.Debug("skipping project without lint nature", "project", p.Name())
			continue
		}
		report, err := a.Build(ctx, p.Name(), kind)
		reports = append(reports, report)
		if err != nil {
			errs = append(errs, err)
			if errors.IsCode(err, errors.CodeEngine) || ctx.Err() != nil {
				break
			}
		}
	}
	return reports, stderrors.Join(errs...)
}

// Toggle flips lint participation for a project. Disabling forgets the
// recorded build state so re-enabling starts from a full pass.
func (a *App) Toggle(ctx context.Context, name string) (bool, error) {
	p, err := a.project(name)
	if err != nil {
		return false, err
	}
	lock := a.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	enabled, err := a.Natures.Toggle(ctx, p)
	if err != nil {
		return enabled, err
	}
	if !enabled {
		if err := a.state.Forget(name); err != nil {
			slog.Warn("failed to forget build state", "project", name, "error", err)
		}
	}
	return enabled, nil
}

// Markers lists this tool's markers, for one project or all when name is "".
func (a *App) Markers(ctx context.Context, name string) ([]markers.Marker, error) {
	var projects []*workspace.Project
	if name == "" {
		projects = a.Workspace.Projects()
	} else {
		p, err := a.project(name)
		if err != nil {
			return nil, err
		}
		projects = []*workspace.Project{p}
	}

	var out []markers.Marker
	for _, p := range projects {
		found, err := a.markers.Find(ctx, p.Resource(), builder.MarkerKind, markers.DepthInfinite)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeStorage, "list markers"), errors.CtxProject, p.Name())
		}
		out = append(out, found...)
	}
	return out, nil
}

// Subscribe registers fn for build events and returns its cancel function.
func (a *App) Subscribe(fn func(BuildEvent)) func() {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	return func() {
		a.subsMu.Lock()
		defer a.subsMu.Unlock()
		delete(a.subs, id)
	}
}

func (a *App) publish(ev BuildEvent) {
	a.subsMu.RLock()
	defer a.subsMu.RUnlock()
	for _, fn := range a.subs {
		fn(ev)
	}
}

// ApplyConfig takes the reloadable parts of a new configuration.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.limiters.SetLimits(cfg.Watch.BuildsPerSecond, cfg.Watch.Burst)
	slog.Info("watch limits updated", "builds_per_second", cfg.Watch.BuildsPerSecond, "burst", cfg.Watch.Burst)
}

func (a *App) String() string {
	return fmt.Sprintf("csslint(%d projects, db=%s)", len(a.Workspace.Projects()), a.markers.Path())
}
