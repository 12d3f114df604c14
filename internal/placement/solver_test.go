package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
)

func app(id int64, x, y int) layout.Item {
	return layout.Item{
		ID: id, Kind: layout.KindApplication,
		CellX: x, CellY: y, SpanX: 1, SpanY: 1, MinSpanX: 1, MinSpanY: 1,
		Weight: layout.WeightApplication,
	}
}

func shortcut(id int64, x, y int) layout.Item {
	it := app(id, x, y)
	it.Kind = layout.KindShortcut
	it.Weight = layout.WeightShortcut
	return it
}

func widget(id int64, x, y, w, h, minW, minH int) layout.Item {
	it := layout.Item{
		ID: id, Kind: layout.KindWidget,
		CellX: x, CellY: y, SpanX: w, SpanY: h, MinSpanX: minW, MinSpanY: minH,
	}
	it.Weight = layout.ComputeWeight(it, 0)
	return it
}

// assertValidPlacement checks that placed items lie inside the grid and
// neither overlap each other nor the cells taken before the search.
func assertValidPlacement(t *testing.T, occ *grid.Occupancy, placed []layout.Item) {
	t.Helper()
	size := occ.Size()
	for i, a := range placed {
		require.True(t, size.Contains(a.Rect()), "item %d at %+v outside %s", a.ID, a.Rect(), size)
		assert.True(t, occ.IsRegionVacant(a.CellX, a.CellY, a.SpanX, a.SpanY),
			"item %d placed on taken cells", a.ID)
		for _, b := range placed[i+1:] {
			assert.False(t, a.Rect().Intersects(b.Rect()), "items %d and %d overlap", a.ID, b.ID)
		}
	}
}

func sumWeights(items []layout.Item) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Weight
	}
	return total
}

func TestCost_Less(t *testing.T) {
	assert.True(t, Cost{Loss: 0.8, Move: 9}.Less(Cost{Loss: 1.0, Move: 0}))
	assert.True(t, Cost{Loss: 0.1 + 0.2, Move: 1}.Less(Cost{Loss: 0.3, Move: 2}))
	assert.False(t, Cost{Loss: 0.3, Move: 2}.Less(Cost{Loss: 0.1 + 0.2, Move: 2}))
	assert.True(t, Cost{}.Less(worst))
	assert.True(t, Cost{Loss: 1e-12}.NoLoss())
}

func TestSolve_NoItems(t *testing.T) {
	sol := Solve(grid.NewOccupancy(grid.Size{Width: 2, Height: 2}), nil, 0, ModeMovementAware)
	assert.Equal(t, Cost{}, sol.Cost)
	assert.Empty(t, sol.Placed)
	assert.Empty(t, sol.Unplaced)
}

func TestSolve_KeepsItemsInPlace(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 2, Height: 2})
	items := []layout.Item{app(1, 0, 0), app(2, 1, 0), app(3, 0, 1), app(4, 1, 1)}

	sol := Solve(occ, items, 0, ModeMovementAware)

	assert.Equal(t, Cost{}, sol.Cost)
	require.Len(t, sol.Placed, 4)
	for _, p := range sol.Placed {
		orig := items[p.ID-1]
		assert.True(t, orig.SamePlacement(p), "item %d moved", p.ID)
	}
}

func TestSolve_DropsLowestWeightFirst(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 1, Height: 1})
	items := []layout.Item{app(1, 0, 0), shortcut(2, 0, 0), app(3, 0, 0)}

	sol := Solve(occ, items, 0, ModeMovementAware)

	require.Len(t, sol.Placed, 1)
	assert.Equal(t, int64(2), sol.Placed[0].ID)
	assert.InDelta(t, 1.6, sol.Cost.Loss, 1e-9)
	assert.Len(t, sol.Unplaced, 2)
	assert.InDelta(t, sumWeights(sol.Unplaced), sol.Cost.Loss, 1e-9)
}

func TestSolve_TieSkipPrefersUnmovedItem(t *testing.T) {
	// Both apps weigh the same; keeping the one already at (0,0) costs no move.
	occ := grid.NewOccupancy(grid.Size{Width: 1, Height: 1})
	items := []layout.Item{app(1, 1, 0), app(2, 0, 0)}

	sol := Solve(occ, items, 0, ModeMovementAware)

	require.Len(t, sol.Placed, 1)
	assert.Equal(t, int64(2), sol.Placed[0].ID)
	assert.Equal(t, Cost{Loss: layout.WeightApplication, Move: 0}, sol.Cost)
}

func TestSolve_NearestFreeCell(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 3, Height: 3})
	occ.MarkCells(grid.Rect{X: 2, Y: 2, W: 1, H: 1}, true)
	items := []layout.Item{app(1, 2, 2)}

	sol := Solve(occ, items, 0, ModeMovementAware)

	require.Len(t, sol.Placed, 1)
	// (2,1) and (1,2) are both one cell away; scan order picks row 1 first.
	assert.Equal(t, 2, sol.Placed[0].CellX)
	assert.Equal(t, 1, sol.Placed[0].CellY)
	assert.Equal(t, Cost{Loss: 0, Move: 1}, sol.Cost)
}

func TestSolve_FeasibilityFillsInScanOrder(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 3, Height: 1})
	items := []layout.Item{app(1, 2, 0)}

	sol := Solve(occ, items, 0, ModeFeasibility)

	require.Len(t, sol.Placed, 1)
	assert.Equal(t, 0, sol.Placed[0].CellX)
	assert.Equal(t, Cost{}, sol.Cost)
}

func TestSolve_WidgetResizedInsteadOfDropped(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 1, Height: 2})
	w := widget(1, 0, 0, 2, 2, 1, 1)
	w.Weight = 2

	sol := Solve(occ, []layout.Item{w}, 0, ModeMovementAware)

	require.Len(t, sol.Placed, 1)
	got := sol.Placed[0]
	assert.Equal(t, grid.Rect{X: 0, Y: 0, W: 1, H: 2}, got.Rect())
	assert.True(t, sol.Cost.NoLoss())
	assert.Equal(t, 1, sol.Cost.Move)
}

func TestSolve_WidgetNotShrunkBelowMinimum(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 1, Height: 1})
	w := widget(1, 0, 0, 2, 2, 2, 2)

	sol := Solve(occ, []layout.Item{w}, 0, ModeMovementAware)

	assert.Empty(t, sol.Placed)
	require.Len(t, sol.Unplaced, 1)
	assert.InDelta(t, w.Weight, sol.Cost.Loss, 1e-9)
}

func TestSolve_RespectsStartRow(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 2, Height: 2})
	items := []layout.Item{app(1, 0, 0), app(2, 1, 0), widget(3, 0, 0, 2, 1, 1, 1)}

	sol := Solve(occ, items, 1, ModeMovementAware)

	for _, p := range sol.Placed {
		assert.GreaterOrEqual(t, p.CellY, 1, "item %d above start row", p.ID)
	}
	assertValidPlacement(t, occ, sol.Placed)
	// Only row 1 is usable: the widget shrinks to 1x1 and shares it with one app.
	assert.InDelta(t, layout.WeightApplication, sol.Cost.Loss, 1e-9)
	assert.Len(t, sol.Placed, 2)
}

func TestSolve_RestoresOccupancy(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 3, Height: 3})
	occ.MarkCells(grid.Rect{X: 0, Y: 0, W: 2, H: 1}, true)
	before := occ.FreeCells()

	items := []layout.Item{widget(1, 0, 0, 2, 2, 1, 1), app(2, 2, 2), shortcut(3, 1, 1)}
	Solve(occ, items, 0, ModeMovementAware)

	assert.Equal(t, before, occ.FreeCells())
	assert.True(t, occ.IsOccupied(0, 0))
	assert.True(t, occ.IsOccupied(1, 0))
}

func TestSolve_MixedLayoutIsValid(t *testing.T) {
	tests := []struct {
		name  string
		size  grid.Size
		taken []grid.Rect
		items []layout.Item
	}{
		{
			name: "widgets and apps fit",
			size: grid.Size{Width: 4, Height: 4},
			items: []layout.Item{
				widget(1, 0, 0, 2, 2, 2, 2), widget(2, 2, 0, 2, 1, 1, 1),
				app(3, 3, 3), app(4, 0, 3), shortcut(5, 1, 3),
			},
		},
		{
			name:  "crowded grid",
			size:  grid.Size{Width: 3, Height: 3},
			taken: []grid.Rect{{X: 0, Y: 0, W: 3, H: 1}},
			items: []layout.Item{
				widget(1, 0, 1, 3, 2, 2, 2), widget(2, 0, 0, 2, 2, 1, 1),
				app(3, 2, 2), app(4, 1, 1), shortcut(5, 0, 2), shortcut(6, 2, 0),
			},
		},
		{
			name: "more items than cells",
			size: grid.Size{Width: 2, Height: 2},
			items: []layout.Item{
				app(1, 0, 0), app(2, 1, 0), app(3, 0, 1), app(4, 1, 1),
				shortcut(5, 1, 1), shortcut(6, 0, 0),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := grid.NewOccupancy(tt.size)
			for _, r := range tt.taken {
				occ.MarkCells(r, true)
			}

			sol := Solve(occ, tt.items, 0, ModeMovementAware)

			assertValidPlacement(t, occ, sol.Placed)
			assert.Equal(t, len(tt.items), len(sol.Placed)+len(sol.Unplaced))
			assert.InDelta(t, sumWeights(sol.Unplaced), sol.Cost.Loss, 1e-9)
			for _, p := range sol.Placed {
				assert.GreaterOrEqual(t, p.SpanX, p.MinSpanX)
				assert.GreaterOrEqual(t, p.SpanY, p.MinSpanY)
			}
		})
	}
}

func TestSolve_LossMonotonicInCapacity(t *testing.T) {
	items := []layout.Item{
		widget(1, 0, 0, 2, 2, 1, 1), widget(2, 2, 0, 3, 1, 2, 1),
		app(3, 4, 4), app(4, 0, 4), shortcut(5, 2, 2), shortcut(6, 3, 3), app(7, 1, 3),
	}

	prev := -1.0
	for w := 5; w >= 1; w-- {
		sol := Solve(grid.NewOccupancy(grid.Size{Width: w, Height: 3}), items, 0, ModeMovementAware)
		assert.GreaterOrEqual(t, sol.Cost.Loss+1e-9, prev, "loss decreased at width %d", w)
		prev = sol.Cost.Loss
	}
}

func TestNewSorted_RejectsUnsortedInput(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 2, Height: 2})
	items := []layout.Item{app(1, 0, 0), widget(2, 0, 0, 2, 1, 1, 1)}

	_, err := NewSorted(occ, items, 0, ModeMovementAware)
	assert.ErrorIs(t, err, ErrUnsorted)

	layout.SortForPlacement(items)
	s, err := NewSorted(occ, items, 0, ModeMovementAware)
	require.NoError(t, err)
	assert.True(t, s.Solve().Cost.NoLoss())
}

func TestNew_SortsCopyOfInput(t *testing.T) {
	occ := grid.NewOccupancy(grid.Size{Width: 2, Height: 2})
	items := []layout.Item{app(1, 0, 0), widget(2, 0, 0, 2, 1, 1, 1)}

	s := New(occ, items, 0, ModeMovementAware)
	require.NotNil(t, s)
	assert.True(t, s.Solve().Cost.NoLoss())
	assert.Equal(t, int64(1), items[0].ID, "input order must not change")
}

func TestSolve_BulkLossOnlyForUnitTail(t *testing.T) {
	// The grid is full; every item is lost whether skipped singly or in bulk.
	occ := grid.NewOccupancy(grid.Size{Width: 2, Height: 1})
	occ.MarkCells(grid.Rect{X: 0, Y: 0, W: 2, H: 1}, true)
	items := []layout.Item{widget(1, 0, 0, 2, 1, 1, 1), shortcut(2, 0, 0), app(3, 1, 0)}

	sol := Solve(occ, items, 0, ModeMovementAware)

	assert.Empty(t, sol.Placed)
	assert.Len(t, sol.Unplaced, 3)
	assert.InDelta(t, sumWeights(items), sol.Cost.Loss, 1e-9)
}
