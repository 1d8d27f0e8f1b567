package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m Model) (tea.Model, tea.Cmd) {
	filtering := m.markerList.FilterState() == list.Filtering || m.projectList.FilterState() == list.Filtering
	if !filtering {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.mode == panelMarkers {
				m.mode = panelProjects
			} else {
				m.mode = panelMarkers
			}
			return m, nil
		case "r":
			return requestRebuild(m)
		}
	} else if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.mode == panelMarkers {
		m.markerList, cmd = m.markerList.Update(msg)
	} else {
		m.projectList, cmd = m.projectList.Update(msg)
	}
	return m, cmd
}

func requestRebuild(m Model) (tea.Model, tea.Cmd) {
	if m.rebuild == nil || m.rebuilding {
		return m, nil
	}
	m.rebuilding = true
	m.status = statusStyle.Render("Rebuilding all projects...")
	rebuild := m.rebuild
	return m, func() tea.Msg {
		return rebuildDoneMsg{err: rebuild()}
	}
}

func renderHelp(m Model) string {
	keys := "Keys: tab projects | / filter | r full rebuild | q quit"
	if m.mode == panelProjects {
		keys = "Keys: tab problems | / filter | r full rebuild | q quit"
	}
	return statusStyle.Render(keys)
}
