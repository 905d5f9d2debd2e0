// Package ui renders live conformance-suite progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"latrt/internal/suite"
)

// maxVisible caps the case list; passing cases give way first.
const maxVisible = 20

type progressModel struct {
	title   string
	events  <-chan suite.Event
	spinner spinner.Model
	prog    progress.Model
	items   []caseItem
	index   map[string]int
	passed  int
	failed  int
	width   int
	done    bool
}

type caseItem struct {
	name     string
	status   string
	finished bool
}

type eventMsg suite.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders suite progress
// until events is closed.
func NewProgressModel(title string, cases []string, events <-chan suite.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]caseItem, 0, len(cases))
	index := make(map[string]int, len(cases))
	for i, name := range cases {
		items = append(items, caseItem{name: name, status: "queued"})
		index[name] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(suite.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s  %d ok, %d failed, %d total", m.title, m.passed, m.failed, len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.visible() {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s\n", status, truncate(item.name, nameWidth)))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visible keeps failures and unfinished cases in view ahead of passes.
func (m *progressModel) visible() []caseItem {
	if len(m.items) <= maxVisible {
		return m.items
	}
	out := make([]caseItem, 0, maxVisible)
	for _, it := range m.items {
		if it.status == "error" && len(out) < maxVisible {
			out = append(out, it)
		}
	}
	for _, it := range m.items {
		if !it.finished && len(out) < maxVisible {
			out = append(out, it)
		}
	}
	for _, it := range m.items {
		if it.status == "ok" && len(out) < maxVisible {
			out = append(out, it)
		}
	}
	return out
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev suite.Event) tea.Cmd {
	idx, ok := m.index[ev.Case]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if item.finished {
		return nil
	}
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		item.status = label
	}
	switch ev.Status {
	case suite.StatusDone:
		item.finished = true
		m.passed++
	case suite.StatusError:
		item.finished = true
		m.failed++
	}
	return m.prog.SetPercent(float64(m.passed+m.failed) / float64(len(m.items)))
}

func statusLabel(stage suite.Stage, status suite.Status) string {
	switch status {
	case suite.StatusQueued:
		return "queued"
	case suite.StatusDone:
		return "ok"
	case suite.StatusError:
		return "error"
	case suite.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage suite.Stage) string {
	switch stage {
	case suite.StageCompile:
		return "compiling"
	case suite.StageRun:
		return "running"
	case suite.StageCompare:
		return "comparing"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "ok":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "compiling", "running", "comparing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
