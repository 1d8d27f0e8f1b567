package app

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"csslint/internal/core/changeset"
	"csslint/internal/core/prefs"
	"csslint/internal/core/watcher"
	"csslint/internal/core/workspace"
	"csslint/internal/shared/observability"
)

// prefsSettle bounds how long a burst of preference edits is collected
// before the rebuild it causes.
const prefsSettle = 200 * time.Millisecond

// StartWatcher watches every project root and turns change batches into
// incremental builds until ctx ends. Close the returned watcher to stop.
func (a *App) StartWatcher(ctx context.Context) (*watcher.Watcher, error) {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		nil,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return nil, err
	}
	w.SetFilters(watcher.DefaultExtensions, []string{workspace.DescriptionFile})

	roots := make([]string, 0, len(a.Workspace.Projects()))
	for _, p := range a.Workspace.Projects() {
		roots = append(roots, p.Root())
	}
	if err := w.Watch(roots); err != nil {
		_ = w.Close()
		return nil, err
	}
	go a.limiters.Run(ctx)
	return w, nil
}

// HandleChanges maps changed file system paths to projects and runs one
// rate-limited incremental build per affected project.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	affected := make(map[string]bool)
	for _, path := range paths {
		res, ok := a.Workspace.Locate(path)
		if !ok {
			continue
		}
		affected[res.Project] = true
	}
	if len(affected) == 0 {
		return
	}
	slog.Info("detected changes", "count", len(paths), "projects", len(affected))

	names := make([]string, 0, len(affected))
	for name := range affected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := a.Workspace.Project(name)
		if !ok || !a.Natures.Enabled(p) {
			continue
		}
		limiter := a.limiters.Get(name)
		if !limiter.Allow(1) {
			observability.ThrottledBuildsTotal.Inc()
			if err := limiter.Wait(ctx, 1); err != nil {
				return
			}
		}
		if _, err := a.Build(ctx, name, changeset.Incremental); err != nil {
			slog.Error("incremental build failed", "project", name, "error", err)
		}
	}
}

// WatchPreferences invalidates the engine on every preference change and
// then rebuilds all projects in full, since existing markers were produced
// under the old options. It returns when ctx ends.
func (a *App) WatchPreferences(ctx context.Context) {
	changes, cancel := a.Prefs.Subscribe(16)
	defer cancel()
	a.rebuildOnChanges(ctx, changes)
}

// rebuildOnChanges invalidates the handle before each rebuild it starts, so
// the rebuild always reconfigures the engine from the current preferences.
func (a *App) rebuildOnChanges(ctx context.Context, changes <-chan prefs.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			slog.Info("preference changed", "key", change.Key, "removed", change.Removed)
			if !a.settle(ctx, changes) {
				return
			}
			a.Handle.Invalidate()
			if _, err := a.BuildAll(ctx, changeset.Full); err != nil {
				slog.Error("rebuild after preference change failed", "error", err)
			}
		}
	}
}

// settle drains changes until none arrive for prefsSettle. It reports false
// when ctx ended or the channel closed.
func (a *App) settle(ctx context.Context, changes <-chan prefs.Change) bool {
	timer := time.NewTimer(prefsSettle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-changes:
			if !ok {
				return false
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(prefsSettle)
		case <-timer.C:
			return true
		}
	}
}
