package ports

import (
	"context"

	"csslint/internal/core/analysis"
	"csslint/internal/core/changeset"
	"csslint/internal/core/workspace"
	"csslint/internal/data/markers"
)

// UnknownWork is the total passed to BeginTask when the amount of work is
// not known up front.
const UnknownWork = -1

// Monitor receives build progress and reports cancellation requests.
type Monitor interface {
	BeginTask(name string, totalWork int)
	SubTask(name string)
	Done()
	Canceled() bool
}

// Analyzer turns style sheet text into issues.
type Analyzer interface {
	Analyze(ctx context.Context, path, text string) (analysis.Result, error)
}

// MarkerStore abstracts marker persistence for the builder and the nature
// toggle.
type MarkerStore interface {
	CreateBatch(ctx context.Context, res workspace.Resource, kind string, batch []markers.Attributes) ([]markers.Marker, error)
	DeleteAll(ctx context.Context, res workspace.Resource, kind string, depth markers.Depth) (int64, error)
	Find(ctx context.Context, res workspace.Resource, kind string, depth markers.Depth) ([]markers.Marker, error)
}

// BuildStateStore keeps the snapshot of the last successful build per
// project.
type BuildStateStore interface {
	Load(project string) *changeset.Snapshot
	Save(snap changeset.Snapshot) error
	Forget(project string) error
}
