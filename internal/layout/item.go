// Package layout defines the core domain types for gridshift: the items that
// live on workspace screens and in the hotseat, and the storage interfaces
// the migration engine reads from and writes to.
package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/gridshift/internal/grid"
)

// Validation errors. An item failing validation is excluded from placement
// and deleted; the run continues.
var (
	ErrUnavailableTarget = errors.New("target package is not installed")
	ErrEmptyFolder       = errors.New("folder has no valid items")
	ErrUnsupportedKind   = errors.New("unsupported item kind")
	ErrWidgetTooLarge    = errors.New("widget cannot be resized down to fit the grid")
	ErrSlotOutOfRange    = errors.New("hotseat slot is outside the source hotseat")
	ErrInvalidSpan       = errors.New("span must be at least 1x1")
)

// Container ids for items that are not inside a folder.
const (
	ContainerDesktop int64 = -100
	ContainerHotseat int64 = -101
)

// Kind is the type of a placed item.
type Kind string

const (
	KindApplication  Kind = "application"
	KindShortcut     Kind = "shortcut"
	KindDeepShortcut Kind = "deep_shortcut"
	KindFolder       Kind = "folder"
	KindWidget       Kind = "widget"
)

// Valid returns true if the kind is a known value.
func (k Kind) Valid() bool {
	switch k {
	case KindApplication, KindShortcut, KindDeepShortcut, KindFolder, KindWidget:
		return true
	default:
		return false
	}
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
	return k, nil
}

// Item is one migratable entity: an app icon, shortcut, folder or widget.
type Item struct {
	ID        int64
	Kind      Kind
	Title     string
	Target    string // component ("pkg/.Activity"), bare package, or widget provider
	Container int64  // ContainerDesktop, ContainerHotseat, or a folder id
	Screen    int64  // screen id on the desktop, slot index in the hotseat
	CellX     int
	CellY     int
	SpanX     int
	SpanY     int
	MinSpanX  int // 0 means unknown
	MinSpanY  int
	Weight    float64
}

// Rect returns the cells the item covers.
func (it Item) Rect() grid.Rect {
	return grid.Rect{X: it.CellX, Y: it.CellY, W: it.SpanX, H: it.SpanY}
}

// IsWidget returns true if the item is an app widget.
func (it Item) IsWidget() bool {
	return it.Kind == KindWidget
}

// IsUnit returns true if the item covers exactly one cell.
func (it Item) IsUnit() bool {
	return it.SpanX <= 1 && it.SpanY <= 1
}

// Area returns the number of cells the item covers.
func (it Item) Area() int {
	return it.SpanX * it.SpanY
}

// Package returns the package name referenced by Target.
func (it Item) Package() string {
	target := strings.TrimSpace(it.Target)
	if i := strings.IndexByte(target, '/'); i >= 0 {
		return target[:i]
	}
	return target
}

// SamePlacement reports whether two records put the item at the same screen,
// position and size. Only items whose placement changed are written back.
func (it Item) SamePlacement(other Item) bool {
	return it.Screen == other.Screen &&
		it.CellX == other.CellX && it.CellY == other.CellY &&
		it.SpanX == other.SpanX && it.SpanY == other.SpanY
}

// Validate checks the span invariants of an item.
func (it Item) Validate() error {
	if !it.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, it.Kind)
	}
	if it.SpanX < 1 || it.SpanY < 1 {
		return ErrInvalidSpan
	}
	return nil
}

// ValidationError records why an item was excluded from a migration.
type ValidationError struct {
	ItemID int64
	Kind   Kind
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.ItemID, e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
