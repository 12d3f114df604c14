// Package tui renders layouts and provides the interactive migration preview.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/gridshift/internal/tui/theme"
)

// cellWidth is the number of terminal columns per grid cell.
const cellWidth = 10

// CellState describes what a run did to an item.
type CellState int

const (
	StateKept    CellState = iota // unchanged
	StateMoved                    // new screen or position
	StateResized                  // span changed
	StateRemoved                  // deleted by the run
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	TitleStyle    lipgloss.Style
	HeaderStyle   lipgloss.Style
	BoxStyle      lipgloss.Style
	EmptyStyle    lipgloss.Style
	ReservedStyle lipgloss.Style
	WarningStyle  lipgloss.Style
	MutedStyle    lipgloss.Style

	cells map[CellState]lipgloss.Style
}

// NewStyles builds styles from a theme. A nil theme uses the default.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)

	cell := func(bg, fg lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Background(bg).Foreground(fg)
	}

	return &Styles{
		TitleStyle:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		HeaderStyle:   lipgloss.NewStyle().Foreground(p.Fg),
		BoxStyle:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Accent),
		EmptyStyle:    lipgloss.NewStyle().Background(p.Bg).Foreground(p.FgMuted),
		ReservedStyle: lipgloss.NewStyle().Background(p.BgHighlight).Foreground(p.FgMuted),
		WarningStyle:  lipgloss.NewStyle().Foreground(p.Warning),
		MutedStyle:    lipgloss.NewStyle().Foreground(p.FgMuted),
		cells: map[CellState]lipgloss.Style{
			StateKept:    cell(p.KeptBg, p.TextOnKept),
			StateMoved:   cell(p.MovedBg, p.TextOnMoved),
			StateResized: cell(p.ResizedBg, p.TextOnResized),
			StateRemoved: cell(p.RemovedBg, p.TextOnRemoved).Strikethrough(true),
		},
	}
}

// Cell returns the style for an item in state s.
func (s *Styles) Cell(state CellState) lipgloss.Style {
	return s.cells[state]
}
