package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"csslint/internal/core/app"
	"csslint/internal/core/changeset"
	"csslint/internal/core/config"
	"csslint/internal/shared/observability"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var ui bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Lint participating projects whenever their style sheets change",
		Long: "Builds every participating project once, then rebuilds incrementally on file changes " +
			"and in full when preferences change. Runs until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, rt, ui)
		},
	}
	cmd.Flags().BoolVar(&ui, "ui", false, "Show the terminal marker view")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, rt *runtime, ui bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := rt.cfg
	if cfg.Observability.EnableTracing {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer scancel()
				if err := shutdown(sctx); err != nil {
					slog.Warn("failed to flush traces", "error", err)
				}
			}()
		}
	}

	out := cmd.OutOrStdout()
	if !ui {
		unsubscribe := rt.app.Subscribe(func(ev app.BuildEvent) {
			if ev.Err != nil {
				fmt.Fprintf(out, "%s: %s\n", pathColor.Sprint(ev.Report.Project), errorColor.Sprint(ev.Err.Error()))
				return
			}
			printReport(out, ev.Report)
		})
		defer unsubscribe()
	}

	if _, err := rt.app.BuildAll(ctx, changeset.Incremental); err != nil {
		slog.Error("initial build failed", "error", err)
	}

	w, err := rt.app.StartWatcher(ctx)
	if err != nil {
		return err
	}
	defer w.Close()

	if rt.cfgPath != "" {
		cw := config.NewWatcher(rt.cfgPath, func(next *config.Config) {
			config.ApplyEnvOverrides(next)
			rt.app.ApplyConfig(next)
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher disabled", "path", rt.cfgPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := os.MkdirAll(filepath.Dir(rt.paths.PreferencesPath), 0o755); err != nil {
		slog.Warn("preference watcher disabled", "error", err)
	} else {
		g.Go(func() error { return rt.app.Prefs.Watch(gctx) })
	}
	g.Go(func() error {
		rt.app.WatchPreferences(gctx)
		return nil
	})

	if cfg.Observability.Enabled {
		srv := NewObservabilityServer(cfg.Observability.Address, app.NewHealthService(rt.app))
		if err := srv.Start(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return srv.Stop(sctx)
		})
	}

	if ui {
		g.Go(func() error {
			defer cancel()
			return runUI(gctx, rt.app)
		})
	} else {
		fmt.Fprintf(out, "watching %d projects; press Ctrl+C to stop\n", len(rt.app.Workspace.Projects()))
	}

	return g.Wait()
}
