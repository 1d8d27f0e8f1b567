package builder

import (
	"log/slog"

	"csslint/internal/core/ports"
)

// NullMonitor ignores progress and is never canceled.
type NullMonitor struct{}

func (NullMonitor) BeginTask(string, int) {}
func (NullMonitor) SubTask(string) {}
func (NullMonitor) Done() {}
func (NullMonitor) Canceled() bool { return false }

// LogMonitor reports progress as debug log records.
type LogMonitor struct {
	Logger  *slog.Logger
	Project string
}

var (
	_ ports.Monitor = NullMonitor{}
	_ ports.Monitor = LogMonitor{}
)

func (m LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m LogMonitor) BeginTask(name string, totalWork int) {
	m.logger().Debug("task started", "task", name, "project", m.Project, "total", totalWork)
}

func (m LogMonitor) SubTask(name string) {
	m.logger().Debug(name, "project", m.Project)
}

func (m LogMonitor) Done() {
	m.logger().Debug("task done", "project", m.Project)
}

func (LogMonitor) Canceled() bool { return false }
