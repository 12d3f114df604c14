package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
)

func sz(w, h int) grid.Size { return grid.Size{Width: w, Height: h} }

func geom(w, h, hotseat int) layout.Geometry {
	return layout.Geometry{Workspace: sz(w, h), Hotseat: hotseat}
}

func app(id, screen int64, x, y int) layout.Item {
	return layout.Item{
		ID: id, Kind: layout.KindApplication, Target: "com.example.app",
		Container: layout.ContainerDesktop, Screen: screen,
		CellX: x, CellY: y, SpanX: 1, SpanY: 1, MinSpanX: 1, MinSpanY: 1,
		Weight: layout.WeightApplication,
	}
}

func widget(id, screen int64, x, y, w, h, minW, minH int) layout.Item {
	it := layout.Item{
		ID: id, Kind: layout.KindWidget, Target: "com.example.clock/.Provider",
		Container: layout.ContainerDesktop, Screen: screen,
		CellX: x, CellY: y, SpanX: w, SpanY: h, MinSpanX: minW, MinSpanY: minH,
	}
	it.Weight = layout.ComputeWeight(it, 0)
	return it
}

func hotseatItem(id int64, slot int, weight float64) layout.Item {
	return layout.Item{
		ID: id, Kind: layout.KindApplication, Target: "com.example.app",
		Container: layout.ContainerHotseat, Screen: int64(slot),
		CellX: slot, SpanX: 1, SpanY: 1, MinSpanX: 1, MinSpanY: 1,
		Weight: weight,
	}
}

// counter allocates screen ids from next upwards.
func counter(next int64) (ScreenAllocator, *[]int64) {
	var handed []int64
	return func() (int64, error) {
		id := next
		next++
		handed = append(handed, id)
		return id, nil
	}, &handed
}

// requireValidLayout checks bounds and overlap for every workspace screen.
func requireValidLayout(t *testing.T, l *Layout, size grid.Size) {
	t.Helper()
	for id, items := range l.Screens {
		for i, a := range items {
			require.Equal(t, id, a.Screen, "item %d has stale screen", a.ID)
			require.True(t, size.Contains(a.Rect()), "item %d at %+v outside %s", a.ID, a.Rect(), size)
			for _, b := range items[i+1:] {
				require.False(t, a.Rect().Intersects(b.Rect()),
					"items %d and %d overlap on screen %d", a.ID, b.ID, id)
			}
		}
	}
}

func findItem(l *Layout, id int64) (layout.Item, bool) {
	for _, it := range l.Items() {
		if it.ID == id {
			return it, true
		}
	}
	return layout.Item{}, false
}

func TestSteps(t *testing.T) {
	tests := []struct {
		name     string
		src, dst grid.Size
		want     []grid.Size
	}{
		{"same size", sz(4, 4), sz(4, 4), nil},
		{"grow only", sz(4, 4), sz(5, 6), nil},
		{"one column", sz(5, 5), sz(4, 5), []grid.Size{sz(4, 5)}},
		{"both by two", sz(5, 5), sz(3, 3), []grid.Size{sz(4, 4), sz(3, 3)}},
		{"uneven", sz(6, 4), sz(3, 3), []grid.Size{sz(5, 3), sz(4, 3), sz(3, 3)}},
		{"grow width, shrink height", sz(3, 5), sz(5, 3), []grid.Size{sz(5, 4), sz(5, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Steps(tt.src, tt.dst))
		})
	}
}

func TestMigrateScreen_SingleColumnRemoval(t *testing.T) {
	items := []layout.Item{app(1, 0, 4, 2)}

	res := migrateScreen(items, sz(5, 5), sz(4, 5), 0)

	assert.True(t, res.Cost.NoLoss())
	assert.Empty(t, res.Evicted)
	require.Len(t, res.Items, 1)
	assert.True(t, sz(4, 5).Contains(res.Items[0].Rect()))
	assert.Equal(t, 3, res.Items[0].CellX)
	assert.Equal(t, 2, res.Items[0].CellY)
}

func TestMigrateScreen_ForcedDrop(t *testing.T) {
	items := []layout.Item{app(1, 0, 0, 0), app(2, 0, 1, 0), app(3, 0, 0, 1), app(4, 0, 1, 1)}

	res := migrateScreen(items, sz(2, 2), sz(1, 1), 0)

	assert.InDelta(t, 2.4, res.Cost.Loss, 1e-9)
	assert.Len(t, res.Items, 1)
	assert.Len(t, res.Evicted, 3)
	// Bottom row and first column go first on ties.
	assert.Equal(t, 0, res.Column)
	assert.Equal(t, 1, res.Row)
}

func TestMigrateScreen_WidgetResizedInsteadOfDropped(t *testing.T) {
	w := widget(1, 0, 0, 0, 2, 2, 1, 1)
	w.Weight = 2

	res := migrateScreen([]layout.Item{w}, sz(2, 2), sz(1, 2), 0)

	assert.True(t, res.Cost.NoLoss())
	assert.Greater(t, res.Cost.Move, 0)
	require.Len(t, res.Items, 1)
	assert.Equal(t, grid.Rect{X: 0, Y: 0, W: 1, H: 2}, res.Items[0].Rect())
}

func TestMigrateScreen_LossMonotonicInShrink(t *testing.T) {
	items := []layout.Item{
		widget(1, 0, 0, 0, 2, 2, 2, 2), widget(2, 0, 2, 0, 3, 1, 2, 1),
		app(3, 0, 2, 1), app(4, 0, 3, 1), app(5, 0, 4, 1),
		app(6, 0, 0, 2), app(7, 0, 1, 2), app(8, 0, 2, 2), app(9, 0, 3, 2), app(10, 0, 4, 2),
		app(11, 0, 0, 3), app(12, 0, 1, 3), app(13, 0, 2, 3), app(14, 0, 3, 3), app(15, 0, 4, 3),
		app(16, 0, 0, 4), app(17, 0, 1, 4), app(18, 0, 2, 4), app(19, 0, 3, 4), app(20, 0, 4, 4),
	}

	none := migrateScreen(items, sz(5, 5), sz(5, 5), 0).Cost.Loss
	column := migrateScreen(items, sz(5, 5), sz(4, 5), 0).Cost.Loss
	row := migrateScreen(items, sz(5, 5), sz(5, 4), 0).Cost.Loss
	both := migrateScreen(items, sz(5, 5), sz(4, 4), 0).Cost.Loss

	assert.InDelta(t, 0, none, 1e-9)
	assert.LessOrEqual(t, none, column)
	assert.LessOrEqual(t, column, both+1e-9)
	assert.LessOrEqual(t, row, both+1e-9)
	assert.Greater(t, both, 0.0)
}

func TestEngine_ForcedDropCreatesScreens(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{app(1, 0, 0, 0), app(2, 0, 1, 0), app(3, 0, 0, 1), app(4, 0, 1, 1)}
	alloc, handed := counter(10)

	res, err := NewEngine(Options{}, alloc, nil).Migrate(geom(2, 2, 0), geom(1, 1, 0), in)
	require.NoError(t, err)

	assert.Equal(t, []grid.Size{sz(1, 1)}, res.Steps)
	assert.Equal(t, []int64{10, 11, 12}, res.NewScreens)
	assert.Equal(t, res.NewScreens, *handed)
	assert.Len(t, res.Updates, 4)
	assert.Empty(t, res.Deletes)
	assert.Equal(t, 4, res.Layout.Count())
	for _, id := range res.Layout.ScreenIDs() {
		assert.Len(t, res.Layout.Screens[id], 1, "screen %d", id)
	}
	requireValidLayout(t, res.Layout, sz(1, 1))

	// The input layout is untouched.
	assert.Len(t, in.Screens, 1)
	assert.Equal(t, 1, in.Screens[0][1].CellX)
}

func TestEngine_SameGeometryChangesNothing(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{widget(1, 0, 0, 0, 2, 2, 1, 1), app(2, 0, 3, 3)}
	in.Screens[3] = []layout.Item{app(3, 3, 1, 1)}
	in.Hotseat = []layout.Item{hotseatItem(4, 0, 0.8), hotseatItem(5, 2, 0.8)}

	res, err := NewEngine(Options{}, nil, nil).Migrate(geom(4, 4, 5), geom(4, 4, 5), in)
	require.NoError(t, err)

	assert.False(t, res.Changed())
	assert.Empty(t, res.Updates)
	assert.Empty(t, res.Steps)
	assert.Empty(t, res.NewScreens)
}

func TestEngine_GrowOnlyChangesNothing(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{app(1, 0, 3, 3), widget(2, 0, 0, 0, 2, 2, 2, 2)}

	res, err := NewEngine(Options{}, nil, nil).Migrate(geom(4, 4, 4), geom(5, 6, 4), in)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestEngine_MultiStep(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{
		widget(1, 0, 0, 0, 2, 2, 1, 1), widget(2, 0, 2, 0, 3, 1, 2, 1),
		app(3, 0, 4, 4), app(4, 0, 0, 4), app(5, 0, 2, 2), app(6, 0, 3, 3),
	}
	in.Screens[1] = []layout.Item{
		widget(7, 1, 1, 1, 4, 4, 2, 2), app(8, 1, 0, 0), app(9, 1, 4, 0),
	}
	alloc, _ := counter(2)

	res, err := NewEngine(Options{}, alloc, nil).Migrate(geom(5, 5, 4), geom(3, 3, 4), in)
	require.NoError(t, err)

	assert.Equal(t, []grid.Size{sz(4, 4), sz(3, 3)}, res.Steps)
	requireValidLayout(t, res.Layout, sz(3, 3))
	assert.Equal(t, in.Count(), res.Layout.Count(), "workspace items are never dropped")
	for _, it := range res.Layout.Items() {
		assert.GreaterOrEqual(t, it.SpanX, it.MinSpanX, "item %d", it.ID)
		assert.GreaterOrEqual(t, it.SpanY, it.MinSpanY, "item %d", it.ID)
	}
	for _, id := range res.NewScreens {
		assert.NotContains(t, []int64{0, 1}, id)
	}
}

func TestEngine_AbsorbsCarryOverOnLaterScreen(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{app(1, 0, 0, 0), app(2, 0, 1, 0), app(3, 0, 2, 0)}
	in.Screens[1] = []layout.Item{app(4, 1, 0, 0)}
	alloc, handed := counter(5)

	res, err := NewEngine(Options{}, alloc, nil).Migrate(geom(3, 1, 0), geom(2, 1, 0), in)
	require.NoError(t, err)

	assert.Empty(t, res.NewScreens)
	assert.Empty(t, *handed)
	assert.Len(t, res.Layout.Screens[0], 2)
	assert.Len(t, res.Layout.Screens[1], 2)

	moved, ok := findItem(res.Layout, 1)
	require.True(t, ok)
	assert.Equal(t, int64(1), moved.Screen)
	requireValidLayout(t, res.Layout, sz(2, 1))
}

func TestEngine_ReservedRowsOnFirstScreen(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{app(1, 0, 0, 1), app(2, 0, 1, 1)}
	alloc, _ := counter(1)

	opts := Options{FirstScreen: 0, ReservedRows: 1}
	res, err := NewEngine(opts, alloc, nil).Migrate(geom(2, 2, 0), geom(1, 2, 0), in)
	require.NoError(t, err)

	// Row 0 stays empty, so the evicted app goes to a new screen.
	require.Len(t, res.Layout.Screens[0], 1)
	assert.Equal(t, 1, res.Layout.Screens[0][0].CellY)
	assert.Equal(t, []int64{1}, res.NewScreens)
	requireValidLayout(t, res.Layout, sz(1, 2))
}

func TestEngine_PlacementExhausted(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{widget(1, 0, 0, 0, 3, 3, 3, 3)}
	alloc, handed := counter(1)

	_, err := NewEngine(Options{}, alloc, nil).Migrate(geom(3, 3, 0), geom(2, 2, 0), in)

	require.ErrorIs(t, err, ErrPlacementExhausted)
	assert.True(t, IsFatal(err))
	assert.Empty(t, *handed)
}

func TestEngine_NoAllocator(t *testing.T) {
	in := NewLayout()
	in.Screens[0] = []layout.Item{app(1, 0, 0, 0), app(2, 0, 1, 0)}

	_, err := NewEngine(Options{}, nil, nil).Migrate(geom(2, 1, 0), geom(1, 1, 0), in)
	assert.ErrorIs(t, err, ErrNoAllocator)
}

func TestEngine_HotseatShrink(t *testing.T) {
	in := NewLayout()
	in.Hotseat = []layout.Item{
		hotseatItem(1, 0, 1.0), hotseatItem(2, 1, 0.8), hotseatItem(3, 2, 0.8),
		hotseatItem(4, 3, 1.0), hotseatItem(5, 4, 2.0),
	}

	res, err := NewEngine(Options{}, nil, nil).Migrate(geom(4, 4, 5), geom(4, 4, 3), in)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{2, 3}, res.Deletes)
	require.Len(t, res.Layout.Hotseat, 3)
	for slot, it := range res.Layout.Hotseat {
		assert.Equal(t, int64(slot), it.Screen)
		assert.Equal(t, slot, it.CellX)
	}
	// Item 1 keeps slot 0 and is not rewritten.
	var updated []int64
	for _, it := range res.Updates {
		updated = append(updated, it.ID)
	}
	assert.ElementsMatch(t, []int64{4, 5}, updated)
}
