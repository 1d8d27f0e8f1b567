package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if err := s.app.markers.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Components["marker_store"] = "unreachable: " + err.Error()
	} else {
		status.Components["marker_store"] = "ok"
	}

	status.Components["engine"] = s.app.Handle.State().String()

	enabled := 0
	projects := s.app.Workspace.Projects()
	for _, p := range projects {
		if s.app.Natures.Enabled(p) {
			enabled++
		}
	}
	status.Components["workspace"] = fmt.Sprintf("ok (%d projects, %d linted)", len(projects), enabled)

	if path := s.app.Prefs.Path(); path != "" {
		status.Components["preferences"] = path
	} else {
		status.Components["preferences"] = "memory"
	}

	return status
}
