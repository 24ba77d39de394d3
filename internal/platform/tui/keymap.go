package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// ScanKeyMap defines the key bindings for the scan view.
type ScanKeyMap struct {
	Gameplay key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScanKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Gameplay, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScanKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Gameplay, k.Quit}}
}

// DefaultScanKeyMap returns default key bindings.
func DefaultScanKeyMap() ScanKeyMap {
	return ScanKeyMap{
		Gameplay: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "toggle gameplay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ResultsKeyMap defines the key bindings for the results browser.
type ResultsKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextChart key.Binding
	PrevChart key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResultsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextChart, k.PrevChart, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ResultsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextChart, k.PrevChart},
		{k.Quit},
	}
}

// DefaultResultsKeyMap returns default key bindings.
func DefaultResultsKeyMap() ResultsKeyMap {
	return ResultsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextChart: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next chart"),
		),
		PrevChart: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev chart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}
