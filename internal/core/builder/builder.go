// Package builder runs lint passes over a project: it resolves the
// candidate files, clears their old markers, analyzes each style sheet and
// records the issues as markers.
package builder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"csslint/internal/core/changeset"
	"csslint/internal/core/errors"
	"csslint/internal/core/exclusion"
	"csslint/internal/core/ports"
	"csslint/internal/core/prefs"
	"csslint/internal/core/workspace"
	"csslint/internal/data/markers"
	"csslint/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MarkerKind tags every marker this tool owns.
	MarkerKind = "csslint.problem"
	SourceTag  = "CSSLint"
	TaskName   = "CSSLint"

	styleSheetExt = ".css"
)

// Report summarizes one pass.
type Report struct {
	Project        string
	Kind           changeset.Kind
	Candidates     int
	Analyzed       int
	Excluded       int
	Failed         int
	MarkersWritten int
	Cleared        int
	Duration       time.Duration
}

type Builder struct {
	analyzer ports.Analyzer
	markers  ports.MarkerStore
	prefs    prefs.Source
}

// New wires a builder. The analyzer is shared by every builder in the
// process.
func New(analyzer ports.Analyzer, store ports.MarkerStore, src prefs.Source) *Builder {
	return &Builder{analyzer: analyzer, markers: store, prefs: src}
}

// RunBuild lints the files the trigger selects. Only an engine that cannot
// be constructed ends the pass early with an error; every other failure is
// logged and confined to its file.
func (b *Builder) RunBuild(ctx context.Context, project *workspace.Project, trigger changeset.Trigger, monitor ports.Monitor) (Report, error) {
	if monitor == nil {
		monitor = NullMonitor{}
	}
	ctx, span := observability.Tracer.Start(ctx, "builder.RunBuild",
		trace.WithAttributes(
			attribute.String("project", project.Name()),
			attribute.String("kind", trigger.Kind.String()),
		))
	defer span.End()

	start := time.Now()
	report := Report{Project: project.Name(), Kind: trigger.Kind}
	outcome := "success"
	defer func() {
		report.Duration = time.Since(start)
		observability.BuildsTotal.WithLabelValues(trigger.Kind.String(), outcome).Inc()
		observability.BuildDuration.WithLabelValues(trigger.Kind.String()).Observe(report.Duration.Seconds())
	}()

	matcher := exclusion.FromPreferences(b.prefs)
	plan := changeset.Resolve(project, trigger)

	monitor.BeginTask(TaskName, ports.UnknownWork)
	defer monitor.Done()

	for _, res := range plan.Cleared {
		if b.clear(ctx, res) {
			report.Cleared++
		}
	}

	for res := range plan.Candidates {
		if err := canceled(ctx, monitor); err != nil {
			outcome = "canceled"
			span.SetStatus(codes.Error, "canceled")
			return report, err
		}
		report.Candidates++
		if err := b.lintFile(ctx, project, res, matcher, monitor, &report); err != nil {
			outcome = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, "engine unavailable")
			slog.Error("build pass aborted", "project", project.Name(), "error", err)
			return report, errors.AddContext(err, errors.CtxProject, project.Name())
		}
	}

	span.SetAttributes(
		attribute.Int("analyzed", report.Analyzed),
		attribute.Int("markers", report.MarkersWritten),
	)
	slog.Debug("build pass finished",
		"project", report.Project,
		"kind", report.Kind.String(),
		"candidates", report.Candidates,
		"analyzed", report.Analyzed,
		"excluded", report.Excluded,
		"markers", report.MarkersWritten)
	return report, nil
}

func (b *Builder) lintFile(ctx context.Context, project *workspace.Project, res workspace.Resource, matcher *exclusion.Matcher, monitor ports.Monitor, report *Report) error {
	if !res.IsFile() {
		return nil
	}
	if !strings.HasSuffix(res.Name(), styleSheetExt) {
		observability.FilesSkippedTotal.WithLabelValues("extension").Inc()
		return nil
	}

	monitor.SubTask("Linting " + res.Name())
	if !b.clear(ctx, res) {
		// New markers would stack on the ones that could not be removed.
		report.Failed++
		observability.FilesSkippedTotal.WithLabelValues("clear_error").Inc()
		return nil
	}

	if matcher.IsExcluded(res.FullPath()) {
		report.Excluded++
		observability.FilesSkippedTotal.WithLabelValues("excluded").Inc()
		return nil
	}

	text, err := project.ReadText(res.Path)
	if err != nil {
		report.Failed++
		observability.FilesSkippedTotal.WithLabelValues("read_error").Inc()
		slog.Error("failed to read style sheet", "path", res.FullPath(), "error", err)
		return nil
	}

	issues, err := b.analyzer.Analyze(ctx, res.FullPath(), text)
	if err != nil {
		if errors.IsCode(err, errors.CodeEngine) {
			return err
		}
		report.Failed++
		observability.FilesSkippedTotal.WithLabelValues("analysis_error").Inc()
		slog.Warn("style sheet analysis failed", "path", res.FullPath(), "error", err)
		return nil
	}
	report.Analyzed++
	observability.FilesAnalyzedTotal.Inc()
	if len(issues) == 0 {
		return nil
	}

	batch := make([]markers.Attributes, 0, len(issues))
	for _, issue := range issues {
		batch = append(batch, markers.Attributes{
			Message:   issue.Message,
			Severity:  markers.SeverityWarning,
			Line:      issue.Line,
			Column:    issue.Column,
			Category:  issue.Category,
			SourceTag: SourceTag,
		})
	}
	created, err := b.markers.CreateBatch(ctx, res, MarkerKind, batch)
	if err != nil {
		observability.MarkerErrorsTotal.WithLabelValues("create").Inc()
		slog.Error("failed to record markers", "path", res.FullPath(), "count", len(batch), "error", err)
		return nil
	}
	report.MarkersWritten += len(created)
	observability.MarkersWrittenTotal.Add(float64(len(created)))
	return nil
}

// clear drops this tool's markers on res and reports whether the store
// accepted the delete.
func (b *Builder) clear(ctx context.Context, res workspace.Resource) bool {
	if _, err := b.markers.DeleteAll(ctx, res, MarkerKind, markers.DepthZero); err != nil {
		observability.MarkerErrorsTotal.WithLabelValues("delete").Inc()
		slog.Error("failed to clear markers", "path", res.FullPath(), "error", err)
		return false
	}
	return true
}

func canceled(ctx context.Context, monitor ports.Monitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if monitor.Canceled() {
		return context.Canceled
	}
	return nil
}
