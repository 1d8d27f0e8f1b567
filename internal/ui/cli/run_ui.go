package cli

import (
	"context"
	stderrors "errors"
	"log/slog"

	"csslint/internal/core/app"
	"csslint/internal/core/changeset"
	"csslint/internal/ui/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func runUI(ctx context.Context, a *app.App) error {
	m := tui.New(func() error {
		_, err := a.BuildAll(ctx, changeset.Full)
		return err
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	cancel := a.Subscribe(func(ev app.BuildEvent) {
		found, err := a.Markers(ctx, ev.Report.Project)
		if err != nil {
			slog.Warn("failed to load markers for view", "project", ev.Report.Project, "error", err)
		}
		p.Send(tui.BuildMsg{Report: ev.Report, Err: ev.Err, Markers: found, At: ev.At})
	})
	defer cancel()

	go func() {
		found, err := a.Markers(ctx, "")
		if err != nil {
			slog.Warn("failed to load markers for view", "error", err)
			return
		}
		p.Send(tui.SnapshotMsg{Markers: found})
	}()

	_, err := p.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
