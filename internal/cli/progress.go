// ABOUTME: Bubble Tea model rendering live install progress, one row per module
// ABOUTME: Fed by registry state changes and listener outcomes; quits when all finish

package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/featuremod-go/internal/module"
	"github.com/mauromedda/featuremod-go/internal/textwidth"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

type (
	changeMsg module.Change
	doneMsg   outcome
	tickMsg   struct{}
)

type progressRow struct {
	state module.State
	done  bool
	ok    bool
	err   error
}

type progressModel struct {
	order       []module.Name
	rows        map[module.Name]*progressRow
	pending     int
	frame       int
	width       int
	interrupted bool
}

func newProgressModel(names []module.Name, reg *module.Registry, width int) progressModel {
	m := progressModel{
		order:   names,
		rows:    make(map[module.Name]*progressRow, len(names)),
		pending: len(names),
		width:   width,
	}
	for _, n := range names {
		m.rows[n] = &progressRow{state: reg.State(n)}
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m progressModel) Init() tea.Cmd {
	return tick()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.interrupted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case changeMsg:
		if row, ok := m.rows[msg.Name]; ok && !row.done {
			row.state = msg.To
		}
	case doneMsg:
		row, ok := m.rows[msg.name]
		if !ok || row.done {
			return m, nil
		}
		row.done, row.ok, row.err = true, msg.ok, msg.err
		if msg.ok {
			row.state = module.Installed
		} else {
			row.state = module.Failed
		}
		m.pending--
		if m.pending == 0 {
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m progressModel) View() string {
	nameWidth := 0
	for _, n := range m.order {
		nameWidth = max(nameWidth, textwidth.Width(string(n)))
	}

	var b strings.Builder
	for _, n := range m.order {
		row := m.rows[n]
		var mark string
		switch {
		case !row.done:
			mark = spinnerStyle.Render(spinnerFrames[m.frame%len(spinnerFrames)])
		case row.ok:
			mark = okStyle.Render("✓")
		default:
			mark = failStyle.Render("✗")
		}

		line := fmt.Sprintf("%s %s  %s", mark, textwidth.PadRight(string(n), nameWidth), stateStyle(row.state).Render(row.state.String()))
		if row.err != nil {
			line += "  " + dimStyle.Render(row.err.Error())
		}
		if m.width > 0 {
			line = truncateStyled(line, m.width)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.pending > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d pending · ctrl+c to stop waiting", m.pending, len(m.order))))
		b.WriteByte('\n')
	}
	return b.String()
}

// truncateStyled keeps styled lines intact when they fit and falls back to
// plain truncated text when they do not.
func truncateStyled(line string, width int) string {
	if textwidth.Width(line) <= width {
		return line
	}
	return textwidth.Truncate(line, width)
}

// outcomes returns the finished rows in request order.
func (m progressModel) outcomes() []outcome {
	out := make([]outcome, 0, len(m.order))
	for _, n := range m.order {
		row := m.rows[n]
		if row.done {
			out = append(out, outcome{name: n, ok: row.ok, err: row.err})
		}
	}
	return out
}

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

func stateStyle(s module.State) lipgloss.Style {
	switch s {
	case module.Installed:
		return okStyle
	case module.Failed:
		return failStyle
	case module.Installing:
		return spinnerStyle
	default:
		return dimStyle
	}
}
