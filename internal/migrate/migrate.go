// Package migrate moves a launcher layout from one grid geometry to another.
//
// The Engine works on an in-memory Layout: it migrates the hotseat, then
// shrinks every workspace screen one row and column at a time, and finally
// places items that no longer fit on any screen onto new screens. The Runner
// wraps an Engine run in a store transaction.
package migrate

import (
	"errors"
	"sort"

	"github.com/javiermolinar/gridshift/internal/layout"
)

var (
	// ErrPlacementExhausted is returned when carried-over items fit nowhere,
	// not even on a new empty screen.
	ErrPlacementExhausted = errors.New("no placement found for carried-over items")

	// ErrIntegrityViolation is returned when a migration would leave the
	// store empty although it held items before.
	ErrIntegrityViolation = errors.New("migration removed every item")

	// ErrNoAllocator is returned when a new screen is needed but the engine
	// has no way to allocate one.
	ErrNoAllocator = errors.New("no screen allocator configured")
)

// Options tune a migration.
type Options struct {
	// FirstScreen is the screen whose top rows are kept free.
	FirstScreen int64

	// ReservedRows is the number of top rows on FirstScreen the engine never
	// places items into, and never removes.
	ReservedRows int
}

// ScreenAllocator returns a screen id not used by any existing screen.
type ScreenAllocator func() (int64, error)

// Layout is the working set of a migration: desktop items keyed by screen id
// plus the hotseat in slot order.
type Layout struct {
	Screens map[int64][]layout.Item
	Hotseat []layout.Item
}

// NewLayout returns an empty layout.
func NewLayout() *Layout {
	return &Layout{Screens: make(map[int64][]layout.Item)}
}

// ScreenIDs returns the screen ids in ascending order.
func (l *Layout) ScreenIDs() []int64 {
	ids := make([]int64, 0, len(l.Screens))
	for id := range l.Screens {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy.
func (l *Layout) Clone() *Layout {
	out := &Layout{
		Screens: make(map[int64][]layout.Item, len(l.Screens)),
		Hotseat: layout.Clone(l.Hotseat),
	}
	for id, items := range l.Screens {
		out.Screens[id] = layout.Clone(items)
	}
	return out
}

// Items returns every desktop and hotseat item.
func (l *Layout) Items() []layout.Item {
	var all []layout.Item
	for _, id := range l.ScreenIDs() {
		all = append(all, l.Screens[id]...)
	}
	return append(all, l.Hotseat...)
}

// Count returns the number of desktop and hotseat items.
func (l *Layout) Count() int {
	n := len(l.Hotseat)
	for _, items := range l.Screens {
		n += len(items)
	}
	return n
}
