package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/beatrate/internal/scheduler"
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("229"))

var dimStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241"))

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

var pausedStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(lipgloss.Color("208")).
	Padding(0, 1)

var runningStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(lipgloss.Color("10")).
	Padding(0, 1)

// stateStyles colors scheduler states in job lists.
var stateStyles = map[scheduler.State]lipgloss.Style{
	scheduler.NotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	scheduler.Running:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	scheduler.Paused:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	scheduler.Complete:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
}

// centerText pads text on the left so it is centered within width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}

// FormatScore renders a rating, marking sentinel scores as unrated.
func FormatScore(score float32) string {
	if score == scheduler.Sentinel {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", score)
}
