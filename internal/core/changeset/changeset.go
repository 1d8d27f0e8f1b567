// Package changeset decides which resources a build pass visits.
package changeset

import (
	"iter"
	"log/slog"

	"csslint/internal/core/workspace"
)

type Kind int

const (
	Full Kind = iota
	Incremental
)

func (k Kind) String() string {
	if k == Incremental {
		return "incremental"
	}
	return "full"
}

type ChangeKind int

const (
	Added ChangeKind = iota
	Changed
	Removed
)

func (c ChangeKind) String() string {
	switch c {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Entry is one changed path, relative to the project root.
type Entry struct {
	Path string
	Kind ChangeKind
}

// Delta lists the changes since the last build in path order.
type Delta struct {
	Entries []Entry
}

// Trigger is the build request. A nil Delta on an incremental trigger means
// no change information is available.
type Trigger struct {
	Kind  Kind
	Delta *Delta
}

// Plan is the outcome of resolution. Candidates is lazy and restartable:
// every range walks again. Cleared lists files that left the project and
// whose state must be dropped.
type Plan struct {
	Candidates iter.Seq[workspace.Resource]
	Cleared    []workspace.Resource
}

// Resolve computes the plan for trigger. Full triggers and incremental
// triggers without a delta traverse the whole project; an incremental
// trigger with a delta visits only added and changed entries.
func Resolve(project *workspace.Project, trigger Trigger) Plan {
	var plan Plan
	if trigger.Delta != nil {
		for _, e := range trigger.Delta.Entries {
			if e.Kind == Removed {
				plan.Cleared = append(plan.Cleared, workspace.Resource{Project: project.Name(), Path: e.Path, Kind: workspace.File})
			}
		}
	}
	if trigger.Kind == Full || trigger.Delta == nil {
		plan.Candidates = fullWalk(project)
	} else {
		plan.Candidates = deltaWalk(project, trigger.Delta.Entries)
	}
	return plan
}

func fullWalk(project *workspace.Project) iter.Seq[workspace.Resource] {
	return func(yield func(workspace.Resource) bool) {
		stopped := false
		err := project.Accept(func(r workspace.Resource) bool {
			if stopped {
				return false
			}
			if !r.IsFile() {
				return true
			}
			if !yield(r) {
				stopped = true
			}
			return !stopped
		})
		if err != nil {
			slog.Warn("project traversal failed", "project", project.Name(), "error", err)
		}
	}
}

func deltaWalk(project *workspace.Project, entries []Entry) iter.Seq[workspace.Resource] {
	return func(yield func(workspace.Resource) bool) {
		for _, e := range entries {
			if e.Kind == Removed {
				continue
			}
			res, ok := project.Lookup(e.Path)
			if !ok || !res.IsFile() {
				continue
			}
			if !yield(res) {
				return
			}
		}
	}
}
