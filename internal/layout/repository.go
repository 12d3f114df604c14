package layout

import (
	"context"
	"time"
)

// RunRecord summarizes a committed migration.
type RunRecord struct {
	ID         string
	Source     Geometry
	Target     Geometry
	Updated    int
	Deleted    int
	NewScreens int
	CreatedAt  time.Time
}

// Reader loads items for a migration.
type Reader interface {
	// WorkspaceScreens returns the ids of all screens holding desktop items, ascending.
	WorkspaceScreens(ctx context.Context) ([]int64, error)

	// ScreenItems returns the desktop items on one screen.
	ScreenItems(ctx context.Context, screen int64) ([]Item, error)

	// HotseatItems returns the hotseat items ordered by slot.
	HotseatItems(ctx context.Context) ([]Item, error)

	// FolderItems returns the items stored inside a folder.
	FolderItems(ctx context.Context, folderID int64) ([]Item, error)

	// CountItems returns the number of stored items of any container.
	CountItems(ctx context.Context) (int, error)

	// Geometry returns the stored geometry. ok is false if none was stored yet.
	Geometry(ctx context.Context) (g Geometry, ok bool, err error)
}

// Writer applies the result of a migration.
type Writer interface {
	// ApplyChanges writes new placements for updates and deletes the given ids as one batch.
	ApplyChanges(ctx context.Context, updates []Item, deletes []int64) error

	// NextScreenID returns a screen id not used by any stored item
	// nor returned by an earlier call on the same transaction.
	NextScreenID(ctx context.Context) (int64, error)

	// SetGeometry stores the geometry the layout is now arranged for.
	SetGeometry(ctx context.Context, g Geometry) error

	// RecordRun appends a migration to the history.
	RecordRun(ctx context.Context, run *RunRecord) error

	// CreateItems adds items and sets their IDs.
	CreateItems(ctx context.Context, items []*Item) error

	// DeleteAllItems removes every stored item.
	DeleteAllItems(ctx context.Context) error
}

// Tx is a store view bound to one exclusive transaction.
type Tx interface {
	Reader
	Writer
}

// Repository defines the storage interface for layouts.
type Repository interface {
	Reader

	// InTx runs fn inside a transaction. The transaction commits only if fn
	// returns nil; any error rolls back every change made through tx.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// Preview runs fn inside a transaction that is always rolled back.
	Preview(ctx context.Context, fn func(tx Tx) error) error

	// CreateItems adds items in a batch and sets their IDs.
	CreateItems(ctx context.Context, items []*Item) error

	// ListItems returns every stored item ordered by container, screen and position.
	ListItems(ctx context.Context) ([]Item, error)

	// ListRuns returns the most recent migrations, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// Reset deletes every item and stores the given geometry.
	Reset(ctx context.Context, g Geometry) error

	// SetGeometry stores the geometry outside of a migration.
	SetGeometry(ctx context.Context, g Geometry) error

	// Close releases any resources held by the repository.
	Close() error
}
