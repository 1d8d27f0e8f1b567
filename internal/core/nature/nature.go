// Package nature switches lint participation on and off per project.
package nature

import (
	"context"
	"log/slog"

	"csslint/internal/core/builder"
	"csslint/internal/core/errors"
	"csslint/internal/core/ports"
	"csslint/internal/core/workspace"
	"csslint/internal/data/markers"
)

const (
	// NatureID marks a project as participating in linting.
	NatureID = "csslint.nature"
	// BuilderID is the build command registered alongside the nature.
	BuilderID = "csslint.builder"
)

type Manager struct {
	markers ports.MarkerStore
}

func NewManager(store ports.MarkerStore) *Manager {
	return &Manager{markers: store}
}

// Enabled reports whether project carries the nature. An unreadable
// description counts as not enabled.
func (m *Manager) Enabled(project *workspace.Project) bool {
	desc, err := project.Description()
	if err != nil {
		slog.Warn("failed to read project description", "project", project.Name(), "error", err)
		return false
	}
	return desc.HasNature(NatureID)
}

// Toggle flips participation and returns the new state. Disabling also
// removes every marker this tool placed anywhere in the project.
func (m *Manager) Toggle(ctx context.Context, project *workspace.Project) (bool, error) {
	desc, err := project.Description()
	if err != nil {
		return false, errors.AddContext(errors.Wrap(err, errors.CodeIO, "read project description"), errors.CtxProject, project.Name())
	}

	enable := !desc.HasNature(NatureID)
	if enable {
		desc.Natures = append(desc.Natures, NatureID)
		if !desc.HasBuilder(BuilderID) {
			desc.Builders = append(desc.Builders, BuilderID)
		}
	} else {
		desc.Natures = without(desc.Natures, NatureID)
		desc.Builders = without(desc.Builders, BuilderID)
	}

	if err := project.SetDescription(desc); err != nil {
		return !enable, errors.AddContext(errors.Wrap(err, errors.CodeIO, "write project description"), errors.CtxProject, project.Name())
	}
	if enable {
		slog.Info("lint enabled", "project", project.Name())
		return true, nil
	}

	removed, err := m.markers.DeleteAll(ctx, project.Resource(), builder.MarkerKind, markers.DepthInfinite)
	if err != nil {
		slog.Error("failed to remove project markers", "project", project.Name(), "error", err)
	}
	slog.Info("lint disabled", "project", project.Name(), "markers_removed", removed)
	return false, nil
}

func without(list []string, id string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
