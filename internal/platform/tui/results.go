package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/storage"
)

// Results browser layout constants
const (
	minWidthForSidebar = 90 // Minimum width to show chart list sidebar
	sidebarWidth       = 32 // Width of chart list sidebar
)

// ResultsSource is the read side of the ratings store.
type ResultsSource interface {
	Charts() ([]storage.ChartSummary, error)
	ChartResults(chartHash string) ([]storage.Rating, error)
}

var _ ResultsSource = (*storage.Store)(nil)

// ResultsModel is the Bubble Tea model for browsing stored ratings.
type ResultsModel struct {
	source      ResultsSource
	names       map[string]string // chart hash -> display name
	charts      []storage.ChartSummary
	cursor      int // Currently selected chart/mode
	ratings     []storage.Rating
	err         error
	table       table.Model
	help        help.Model
	keys        ResultsKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewResultsModel creates a results browser. names maps chart hashes to
// display names; charts without a name are shown by short hash.
func NewResultsModel(source ResultsSource, names map[string]string, width, height int) ResultsModel {
	h := help.New()
	h.ShowAll = false

	m := ResultsModel{
		source:      source,
		names:       names,
		keys:        DefaultResultsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()

	m.charts, m.err = source.Charts()
	if len(m.charts) > 0 {
		m.loadRatings()
	}
	return m
}

// createTable creates a new table with appropriate columns.
func (m *ResultsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Mods", Width: 12},
		{Title: "Speed", Width: 7},
		{Title: "Rating", Width: 8},
		{Title: "Computed", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 5)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// selected returns the selected chart/mode summary.
func (m ResultsModel) selected() (storage.ChartSummary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.charts) {
		return storage.ChartSummary{}, false
	}
	return m.charts[m.cursor], true
}

// loadRatings loads the ratings of the selected chart in the selected mode,
// ordered by speed and then by modifiers.
func (m *ResultsModel) loadRatings() {
	sel, ok := m.selected()
	if !ok {
		m.ratings = nil
		m.updateTableRows()
		return
	}

	all, err := m.source.ChartResults(sel.ChartHash)
	if err != nil {
		m.err = err
		m.ratings = nil
		m.updateTableRows()
		return
	}

	m.ratings = m.ratings[:0]
	for _, r := range all {
		if r.Mode == sel.Mode {
			m.ratings = append(m.ratings, r)
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current ratings.
func (m *ResultsModel) updateTableRows() {
	rows := make([]table.Row, 0, len(m.ratings))
	for _, r := range m.ratings {
		mods, speed := r.Signature, ""
		if c, err := combo.ParseSignature(r.Signature); err == nil {
			mods = c.Mods.String()
			speed = fmt.Sprintf("%d.%02dx", c.Speed/100, c.Speed%100)
		}
		rows = append(rows, table.Row{
			mods,
			speed,
			FormatScore(r.Score),
			r.ComputedAt.Format("Jan 02 15:04"),
		})
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// chartName returns the display name of a summary.
func (m ResultsModel) chartName(cs storage.ChartSummary) string {
	if name, ok := m.names[cs.ChartHash]; ok && name != "" {
		return name
	}
	if len(cs.ChartHash) > 12 {
		return cs.ChartHash[:12]
	}
	return cs.ChartHash
}

// Init initializes the results model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results browser.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextChart):
			if len(m.charts) > 0 {
				m.cursor = (m.cursor + 1) % len(m.charts)
				m.loadRatings()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevChart):
			if len(m.charts) > 0 {
				m.cursor--
				if m.cursor < 0 {
					m.cursor = len(m.charts) - 1
				}
				m.loadRatings()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the results browser.
func (m ResultsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "RATINGS"
	if sel, ok := m.selected(); ok {
		title = fmt.Sprintf("RATINGS - %s (%s)  nomod %s  max %s",
			m.chartName(sel), sel.Mode, FormatScore(sel.Nomod), FormatScore(sel.Max))
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", boxStyle.Render(m.renderTableContent())))
	} else {
		b.WriteString(centerText(boxStyle.Render(m.renderTableContent()), m.width))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderSidebar renders the chart/mode list.
func (m ResultsModel) renderSidebar() string {
	var sidebar strings.Builder
	sidebar.WriteString("Charts\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, cs := range m.charts {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		label := fmt.Sprintf("%s [%s]", m.chartName(cs), cs.Mode)
		sidebar.WriteString(style.Render(cursor + truncate(label, sidebarWidth-6)))
		sidebar.WriteString("\n")
	}

	return boxStyle.Width(sidebarWidth).Render(sidebar.String())
}

// renderTableContent renders the table or empty message.
func (m ResultsModel) renderTableContent() string {
	if m.err != nil {
		return fmt.Sprintf("Cannot load ratings: %v", m.err)
	}
	if len(m.ratings) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No ratings stored yet.\nRun `beatrate scan` to rate your charts!")
	}

	return m.table.View()
}

// RunResults runs the results browser.
func RunResults(source ResultsSource, names map[string]string, width, height int) error {
	model := NewResultsModel(source, names, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
