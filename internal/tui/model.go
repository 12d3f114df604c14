package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/gridshift/internal/tui/theme"
)

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	First   key.Binding
	Last    key.Binding
	Hotseat key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Hotseat, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Hotseat, k.Help, k.Quit},
	}
}

func defaultKeys() keyMap {
	return keyMap{
		Prev: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "previous screen"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "next screen"),
		),
		First: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first screen"),
		),
		Last: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last screen"),
		),
		Hotseat: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle hotseat"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the preview TUI model. It shows one screen at a time, the
// original layout next to the migrated one.
type Model struct {
	cmp     *Comparison
	styles  *Styles
	keys    keyMap
	help    help.Model
	screens []int64

	index       int
	showHotseat bool
	width       int
}

// New creates a preview model.
func New(cmp *Comparison, t *theme.Theme) Model {
	m := Model{
		cmp:         cmp,
		styles:      NewStyles(t),
		keys:        defaultKeys(),
		help:        help.New(),
		showHotseat: true,
	}
	if cmp != nil {
		m.screens = cmp.Screens()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			if m.index > 0 {
				m.index--
			}
		case key.Matches(msg, m.keys.Next):
			if m.index < len(m.screens)-1 {
				m.index++
			}
		case key.Matches(msg, m.keys.First):
			m.index = 0
		case key.Matches(msg, m.keys.Last):
			m.index = max(len(m.screens)-1, 0)
		case key.Matches(msg, m.keys.Hotseat):
			m.showHotseat = !m.showHotseat
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	if m.cmp == nil {
		return m.styles.MutedStyle.Render("Nothing to migrate.") + "\n"
	}

	title := m.styles.TitleStyle.Render(fmt.Sprintf("gridshift  %s → %s", m.cmp.Source, m.cmp.Target))
	sections := []string{title, ""}

	if len(m.screens) == 0 {
		sections = append(sections, m.styles.MutedStyle.Render("The workspace is empty."))
	} else {
		sections = append(sections, m.sideBySide(m.renderScreen(false), m.renderScreen(true)))
	}

	if m.showHotseat {
		sections = append(sections, "", m.sideBySide(m.renderHotseat(false), m.renderHotseat(true)))
	}

	if rej := m.styles.RenderRejected(m.cmp.Rejected); rej != "" {
		sections = append(sections, "", rej)
	}

	sections = append(sections, "", m.legend(), m.help.View(m.keys))
	return strings.Join(sections, "\n") + "\n"
}

// Screen returns the id of the screen on display.
func (m Model) Screen() (int64, bool) {
	if len(m.screens) == 0 {
		return 0, false
	}
	return m.screens[m.index], true
}

func (m Model) renderScreen(after bool) string {
	id := m.screens[m.index]
	pos := fmt.Sprintf("%d/%d", m.index+1, len(m.screens))

	v := ScreenView{
		Title: fmt.Sprintf("Before · screen %d (%s) %s", id, m.cmp.Source.Workspace, pos),
		Size:  m.cmp.Source.Workspace,
		Items: m.cmp.Before.Screens[id],
		State: m.cmp.BeforeState,
	}
	if after {
		v = ScreenView{
			Title: fmt.Sprintf("After · screen %d (%s)", id, m.cmp.Target.Workspace),
			Size:  m.cmp.Target.Workspace,
			Items: m.cmp.After.Screens[id],
			State: m.cmp.AfterState,
		}
		if slices.Contains(m.cmp.NewScreens, id) {
			v.Title += " new"
		}
	}
	if id == m.cmp.FirstScreen {
		v.ReservedRows = m.cmp.ReservedRows
	}
	return m.styles.RenderScreen(v)
}

func (m Model) renderHotseat(after bool) string {
	if after {
		return m.styles.RenderHotseat("After · hotseat", m.cmp.Target.Hotseat, m.cmp.After.Hotseat, m.cmp.AfterState)
	}
	return m.styles.RenderHotseat("Before · hotseat", m.cmp.Source.Hotseat, m.cmp.Before.Hotseat, m.cmp.BeforeState)
}

// sideBySide joins two blocks horizontally, or stacks them when the
// terminal is too narrow.
func (m Model) sideBySide(left, right string) string {
	joined := lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right)
	if m.width > 0 && lipgloss.Width(joined) > m.width {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return joined
}

func (m Model) legend() string {
	return strings.Join([]string{
		m.styles.Cell(StateKept).Render(" kept "),
		m.styles.Cell(StateMoved).Render(" moved "),
		m.styles.Cell(StateResized).Render(" resized "),
		m.styles.Cell(StateRemoved).Render(" removed "),
		m.styles.ReservedStyle.Render(" reserved "),
	}, " ")
}

// Run starts the interactive preview.
func Run(cmp *Comparison, t *theme.Theme) error {
	p := tea.NewProgram(New(cmp, t), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running preview: %w", err)
	}
	return nil
}
