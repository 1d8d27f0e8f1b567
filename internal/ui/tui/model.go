// Package tui is the terminal marker view shown by "csslint watch --ui".
package tui

import (
	"fmt"
	"sort"
	"time"

	"csslint/internal/core/builder"
	"csslint/internal/data/markers"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelMarkers panelMode = iota
	panelProjects
)

// BuildMsg carries one finished build and the project's markers after it.
type BuildMsg struct {
	Report  builder.Report
	Err     error
	Markers []markers.Marker
	At      time.Time
}

// SnapshotMsg replaces every project's markers, as loaded at startup.
type SnapshotMsg struct {
	Markers []markers.Marker
}

type rebuildDoneMsg struct {
	err error
}

// RebuildFunc runs a full build of every participating project.
type RebuildFunc func() error

type projectState struct {
	report builder.Report
	err    error
	built  bool
}

type Model struct {
	markerList  list.Model
	projectList list.Model
	mode        panelMode

	markers    map[string][]markers.Marker
	projects   map[string]projectState
	lastUpdate time.Time
	status     string
	rebuilding bool

	rebuild RebuildFunc
}

func New(rebuild RebuildFunc) Model {
	markerList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	markerList.Title = "Problems"
	markerList.SetShowStatusBar(false)
	markerList.SetFilteringEnabled(true)

	projectList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	projectList.Title = "Projects"
	projectList.SetShowStatusBar(false)
	projectList.SetFilteringEnabled(true)

	return Model{
		markerList:  markerList,
		projectList: projectList,
		mode:        panelMarkers,
		markers:     make(map[string][]markers.Marker),
		projects:    make(map[string]projectState),
		lastUpdate:  time.Now(),
		rebuild:     rebuild,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.markerList.SetSize(width, height)
		m.projectList.SetSize(width, height)
	case SnapshotMsg:
		m.markers = make(map[string][]markers.Marker)
		for _, mk := range msg.Markers {
			m.markers[mk.Project] = append(m.markers[mk.Project], mk)
		}
		m.lastUpdate = time.Now()
		m.refreshItems()
	case BuildMsg:
		name := msg.Report.Project
		m.projects[name] = projectState{report: msg.Report, err: msg.Err, built: true}
		if msg.Err == nil {
			m.markers[name] = msg.Markers
		}
		m.lastUpdate = msg.At
		m.refreshItems()
	case rebuildDoneMsg:
		m.rebuilding = false
		if msg.err != nil {
			m.status = statusStyle.Render(fmt.Sprintf("Rebuild failed: %v", msg.err))
		} else {
			m.status = statusStyle.Render("Rebuild finished")
		}
	}

	var cmd tea.Cmd
	if m.mode == panelMarkers {
		m.markerList, cmd = m.markerList.Update(msg)
	} else {
		m.projectList, cmd = m.projectList.Update(msg)
	}
	return m, cmd
}

func (m *Model) refreshItems() {
	all := m.allMarkers()
	items := make([]list.Item, 0, len(all))
	for _, mk := range all {
		items = append(items, item{
			title: fmt.Sprintf("%s/%s:%d:%d", mk.Project, mk.Path, mk.Line, mk.Column),
			desc:  fmt.Sprintf("%s %s [%s]", mk.Severity, mk.Message, mk.Category),
		})
	}
	m.markerList.SetItems(items)

	names := make([]string, 0, len(m.projects))
	for name := range m.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	projectItems := make([]list.Item, 0, len(names))
	for _, name := range names {
		projectItems = append(projectItems, item{title: name, desc: describeProject(m.projects[name], len(m.markers[name]))})
	}
	m.projectList.SetItems(projectItems)
}

func describeProject(st projectState, markerCount int) string {
	if st.err != nil {
		return "build failed: " + st.err.Error()
	}
	r := st.report
	return fmt.Sprintf("%s build: analyzed=%d excluded=%d failed=%d markers=%d in %s",
		r.Kind, r.Analyzed, r.Excluded, r.Failed, markerCount, r.Duration.Round(time.Millisecond))
}

// allMarkers flattens the per-project markers in project, path and position
// order.
func (m Model) allMarkers() []markers.Marker {
	var all []markers.Marker
	for _, ms := range m.markers {
		all = append(all, ms...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return all
}

func (m Model) counts() (errs, warnings int) {
	for _, ms := range m.markers {
		for _, mk := range ms {
			switch mk.Severity {
			case markers.SeverityError:
				errs++
			case markers.SeverityWarning:
				warnings++
			}
		}
	}
	return errs, warnings
}

func (m Model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d projects built",
		m.lastUpdate.Format("15:04:05"), len(m.projects)))

	errs, warnings := m.counts()
	var summary string
	if errs == 0 && warnings == 0 {
		summary = successStyle.Render("No problems")
	} else {
		summary = fmt.Sprintf("%s | %s",
			errorStyle.Render(fmt.Sprintf("%d errors", errs)),
			warningStyle.Render(fmt.Sprintf("%d warnings", warnings)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("CSS Lint Monitor"), status, summary)

	body := m.markerList.View()
	if m.mode == panelProjects {
		body = m.projectList.View()
	}
	if m.status != "" {
		body += "\n\n" + m.status
	}
	return docStyle.Render(header + "\n" + renderHelp(m) + "\n\n" + body)
}
