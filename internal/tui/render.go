package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/migrate"
)

// Comparison is the layout before and after a migration.
type Comparison struct {
	Source layout.Geometry
	Target layout.Geometry

	// ReservedRows are the blocked top rows of FirstScreen.
	FirstScreen  int64
	ReservedRows int

	Before *migrate.Layout
	After  *migrate.Layout

	Rejected   []*layout.ValidationError
	NewScreens []int64

	updated map[int64]layout.Item
	deleted map[int64]bool
	spans   map[int64][2]int
}

// NewComparison builds a comparison from a finished run. It returns nil if
// the run did not migrate anything.
func NewComparison(r *migrate.Report, opts migrate.Options) *Comparison {
	if r == nil || !r.Needed || r.Result == nil {
		return nil
	}
	c := &Comparison{
		Source:       r.Source,
		Target:       r.Target,
		FirstScreen:  opts.FirstScreen,
		ReservedRows: opts.ReservedRows,
		Before:       r.Before,
		After:        r.Result.Layout,
		Rejected:     r.Rejected,
		NewScreens:   r.Result.NewScreens,
		updated:      make(map[int64]layout.Item, len(r.Result.Updates)),
		deleted:      make(map[int64]bool, len(r.Deletes)),
		spans:        make(map[int64][2]int),
	}
	for _, it := range r.Result.Updates {
		c.updated[it.ID] = it
	}
	for _, id := range r.Deletes {
		c.deleted[id] = true
	}
	for _, it := range r.Before.Items() {
		c.spans[it.ID] = [2]int{it.SpanX, it.SpanY}
	}
	return c
}

// Screens returns every screen id present before or after, ascending.
func (c *Comparison) Screens() []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, l := range []*migrate.Layout{c.Before, c.After} {
		for _, id := range l.ScreenIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BeforeState returns what the run does to an item of the original layout.
func (c *Comparison) BeforeState(it layout.Item) CellState {
	if c.deleted[it.ID] {
		return StateRemoved
	}
	u, ok := c.updated[it.ID]
	if !ok {
		return StateKept
	}
	if u.SpanX != it.SpanX || u.SpanY != it.SpanY {
		return StateResized
	}
	return StateMoved
}

// AfterState returns what the run did to an item of the migrated layout.
func (c *Comparison) AfterState(it layout.Item) CellState {
	if _, ok := c.updated[it.ID]; !ok {
		return StateKept
	}
	if span, ok := c.spans[it.ID]; ok && span != [2]int{it.SpanX, it.SpanY} {
		return StateResized
	}
	return StateMoved
}

// ScreenView is one screen to draw.
type ScreenView struct {
	Title        string
	Size         grid.Size
	ReservedRows int
	Items        []layout.Item
	State        func(layout.Item) CellState
}

// RenderScreen draws a workspace screen as a bordered grid.
func (s *Styles) RenderScreen(v ScreenView) string {
	owner := cellOwners(v.Size, v.Items)

	var rows []string
	for y := 0; y < v.Size.Height; y++ {
		var b strings.Builder
		for x := 0; x < v.Size.Width; {
			idx := owner[y][x]
			if idx < 0 {
				style := s.EmptyStyle
				if y < v.ReservedRows {
					style = s.ReservedStyle
				}
				b.WriteString(style.Render(pad("·", cellWidth)))
				x++
				continue
			}

			it := v.Items[idx]
			span := 1
			for x+span < v.Size.Width && owner[y][x+span] == idx {
				span++
			}
			label := ""
			if y == it.CellY && x == it.CellX {
				label = itemLabel(it)
			}
			state := StateKept
			if v.State != nil {
				state = v.State(it)
			}
			b.WriteString(s.Cell(state).Render(pad(label, span*cellWidth)))
			x += span
		}
		rows = append(rows, b.String())
	}

	if len(rows) == 0 {
		rows = append(rows, s.MutedStyle.Render("(empty grid)"))
	}
	box := s.BoxStyle.Render(strings.Join(rows, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, s.HeaderStyle.Render(v.Title), box)
}

// RenderHotseat draws the hotseat as a single row of slots.
func (s *Styles) RenderHotseat(title string, slots int, items []layout.Item, state func(layout.Item) CellState) string {
	bySlot := make(map[int64]layout.Item, len(items))
	for _, it := range items {
		bySlot[it.Screen] = it
	}

	var b strings.Builder
	for slot := 0; slot < slots; slot++ {
		it, ok := bySlot[int64(slot)]
		if !ok {
			b.WriteString(s.EmptyStyle.Render(pad("·", cellWidth)))
			continue
		}
		st := StateKept
		if state != nil {
			st = state(it)
		}
		b.WriteString(s.Cell(st).Render(pad(itemLabel(it), cellWidth)))
	}
	if slots == 0 {
		b.WriteString(s.MutedStyle.Render("(no hotseat)"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.HeaderStyle.Render(title), s.BoxStyle.Render(b.String()))
}

// RenderRejected lists the items a run excluded.
func (s *Styles) RenderRejected(rejected []*layout.ValidationError) string {
	if len(rejected) == 0 {
		return ""
	}
	lines := []string{s.WarningStyle.Render(fmt.Sprintf("%d item(s) rejected:", len(rejected)))}
	for _, r := range rejected {
		lines = append(lines, s.MutedStyle.Render("  "+r.Error()))
	}
	return strings.Join(lines, "\n")
}

// cellOwners maps every cell to the index of the item covering it, or -1.
// Cells outside the grid are ignored so a partially visible item still draws.
func cellOwners(size grid.Size, items []layout.Item) [][]int {
	owner := make([][]int, size.Height)
	for y := range owner {
		owner[y] = make([]int, size.Width)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	for i, it := range items {
		for y := it.CellY; y < it.CellY+it.SpanY && y < size.Height; y++ {
			for x := it.CellX; x < it.CellX+it.SpanX && x < size.Width; x++ {
				if y >= 0 && x >= 0 && owner[y][x] < 0 {
					owner[y][x] = i
				}
			}
		}
	}
	return owner
}

func itemLabel(it layout.Item) string {
	label := it.Title
	if label == "" {
		label = it.Package()
	}
	if label == "" {
		label = string(it.Kind)
	}
	return label
}

// pad truncates s to fit width and pads it with spaces after a leading one.
func pad(s string, width int) string {
	inner := width - 1
	s = ansi.Truncate(s, inner, "…")
	return " " + s + strings.Repeat(" ", inner-ansi.StringWidth(s))
}
