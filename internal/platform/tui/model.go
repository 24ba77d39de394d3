package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/beatrate/internal/scan"
)

const maxProgressWidth = 72

// ScanModel is the Bubble Tea model for a running catalog scan. Every
// TickMsg ticks the runner once, so the view owns the scan's tick loop.
type ScanModel struct {
	runner   *scan.Runner
	gameplay *scan.Flag
	tickRate int

	snap     scan.Snapshot
	started  time.Time
	progress progress.Model
	help     help.Model
	keys     ScanKeyMap
	width    int
	height   int
	quitting bool
	done     bool
}

// NewScanModel creates a scan view. gameplay is the flag the view toggles
// to simulate a chart being played; the runner must poll it.
func NewScanModel(r *scan.Runner, gameplay *scan.Flag, tickRate int) ScanModel {
	h := help.New()
	h.ShowAll = false

	return ScanModel{
		runner:   r,
		gameplay: gameplay,
		tickRate: tickRate,
		snap:     r.Snapshot(),
		started:  time.Now(),
		progress: progress.New(progress.WithDefaultGradient()),
		help:     h,
		keys:     DefaultScanKeyMap(),
	}
}

// Init starts the tick loop.
func (m ScanModel) Init() tea.Cmd {
	return tickCmd(m.tickRate)
}

// Update handles messages and advances the scan.
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.runner.Stop()
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Gameplay):
			if m.gameplay != nil {
				m.gameplay.Toggle()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-4, maxProgressWidth)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		m.runner.Tick()
		m.snap = m.runner.Snapshot()
		if m.runner.Done() {
			m.done = true
			return m, tea.Quit
		}
		return m, tickCmd(m.tickRate)
	}

	return m, nil
}

// View renders the scan progress.
func (m ScanModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	s := m.snap

	status := runningStyle.Render("RATING")
	if s.Gameplay {
		status = pausedStyle.Render("GAMEPLAY - PAUSED")
	}
	b.WriteString(titleStyle.Render("beatrate scan") + "  " + status)
	b.WriteString("\n\n")

	percent := 0.0
	if s.Total > 0 {
		percent = float64(s.Done) / float64(s.Total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"%d/%d combinations  %d/%d charts  %d unratable  %s elapsed",
		s.Done, s.Total, s.Finished, s.Tasks, s.Failed,
		time.Since(m.started).Truncate(time.Second),
	)))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(m.renderActive()))
	b.WriteString("\n")

	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderActive lists the active schedulers.
func (m ScanModel) renderActive() string {
	if len(m.snap.Active) == 0 {
		if m.done {
			return "All charts rated."
		}
		return dimStyle.Italic(true).Render("Waiting for charts...")
	}

	nameWidth := 40
	if m.width > 0 {
		nameWidth = max(m.width-40, 16)
	}

	lines := make([]string, 0, len(m.snap.Active))
	for _, p := range m.snap.Active {
		style, ok := stateStyles[p.State]
		if !ok {
			style = dimStyle
		}
		lines = append(lines, fmt.Sprintf("%s %-*s %-8s %5d/%d",
			style.Render(fmt.Sprintf("%-11s", p.State)),
			nameWidth, truncate(p.Chart, nameWidth),
			p.Mode, p.Done, p.Total,
		))
	}
	return strings.Join(lines, "\n")
}

// Snapshot returns the last progress the view rendered.
func (m ScanModel) Snapshot() scan.Snapshot {
	return m.snap
}

// RunScan runs the scan view until the scan completes or the user quits.
// It returns the last snapshot.
func RunScan(r *scan.Runner, gameplay *scan.Flag, tickRate int) (scan.Snapshot, error) {
	model := NewScanModel(r, gameplay, tickRate)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		r.Stop()
		return r.Snapshot(), err
	}

	m, ok := finalModel.(ScanModel)
	if !ok {
		return r.Snapshot(), nil
	}
	return m.Snapshot(), nil
}
