// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/gridshift/internal/layout"
)

// Settings keys.
const (
	keyWorkspaceSize = "workspace_size"
	keyHotseatCount  = "hotseat_count"
)

// runTimeLayout sorts lexically in time order.
const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const itemColumns = `id, kind, title, target, container, screen,
	cell_x, cell_y, span_x, span_y, min_span_x, min_span_y`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite implements layout.Repository using SQLite.
type SQLite struct {
	*store
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{store: &store{q: db}, db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a transaction and commits if fn returns nil.
func (s *SQLite) InTx(ctx context.Context, fn func(tx layout.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&store{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Preview runs fn inside a transaction that is always rolled back.
func (s *SQLite) Preview(ctx context.Context, fn func(tx layout.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(&store{q: tx})
}

// CreateItems adds items in a batch using a transaction and sets their IDs.
func (s *SQLite) CreateItems(ctx context.Context, items []*layout.Item) error {
	if len(items) == 0 {
		return nil
	}
	return s.InTx(ctx, func(tx layout.Tx) error {
		return tx.CreateItems(ctx, items)
	})
}

// Reset deletes every item and stores g, in one transaction.
func (s *SQLite) Reset(ctx context.Context, g layout.Geometry) error {
	return s.InTx(ctx, func(tx layout.Tx) error {
		if err := tx.DeleteAllItems(ctx); err != nil {
			return err
		}
		return tx.SetGeometry(ctx, g)
	})
}

// store runs queries against a database or an open transaction.
type store struct {
	q queryer

	// lastScreen is the highest screen id handed out by NextScreenID.
	lastScreen *int64
}

// WorkspaceScreens returns the ids of all screens holding desktop items.
func (st *store) WorkspaceScreens(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT screen FROM items WHERE container = ? ORDER BY screen`

	rows, err := st.q.QueryContext(ctx, query, layout.ContainerDesktop)
	if err != nil {
		return nil, fmt.Errorf("querying screens: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning screen: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating screens: %w", err)
	}
	return ids, nil
}

// ScreenItems returns the desktop items on one screen.
func (st *store) ScreenItems(ctx context.Context, screen int64) ([]layout.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE container = ? AND screen = ?
		ORDER BY cell_y, cell_x, id`
	return st.queryItems(ctx, query, layout.ContainerDesktop, screen)
}

// HotseatItems returns the hotseat items ordered by slot.
func (st *store) HotseatItems(ctx context.Context) ([]layout.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE container = ?
		ORDER BY screen, id`
	return st.queryItems(ctx, query, layout.ContainerHotseat)
}

// FolderItems returns the items inside a folder.
func (st *store) FolderItems(ctx context.Context, folderID int64) ([]layout.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE container = ?
		ORDER BY screen, cell_y, cell_x, id`
	return st.queryItems(ctx, query, folderID)
}

// ListItems returns every item ordered by container, screen and position.
func (st *store) ListItems(ctx context.Context) ([]layout.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		ORDER BY container, screen, cell_y, cell_x, id`
	return st.queryItems(ctx, query)
}

// CountItems returns the number of stored items.
func (st *store) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := st.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

func (st *store) queryItems(ctx context.Context, query string, args ...any) ([]layout.Item, error) {
	rows, err := st.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []layout.Item
	for rows.Next() {
		var (
			it   layout.Item
			kind string
		)
		err := rows.Scan(
			&it.ID, &kind, &it.Title, &it.Target, &it.Container, &it.Screen,
			&it.CellX, &it.CellY, &it.SpanX, &it.SpanY, &it.MinSpanX, &it.MinSpanY,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Kind = layout.Kind(kind)
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// ApplyChanges writes new placements and deletes items.
func (st *store) ApplyChanges(ctx context.Context, updates []layout.Item, deletes []int64) error {
	update := `
		UPDATE items
		SET container = ?, screen = ?, cell_x = ?, cell_y = ?, span_x = ?, span_y = ?
		WHERE id = ?
	`
	for _, it := range updates {
		result, err := st.q.ExecContext(ctx, update,
			it.Container, it.Screen, it.CellX, it.CellY, it.SpanX, it.SpanY, it.ID)
		if err != nil {
			return fmt.Errorf("updating item %d: %w", it.ID, err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return fmt.Errorf("item %d not found", it.ID)
		}
	}

	for _, id := range deletes {
		if _, err := st.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting item %d: %w", id, err)
		}
	}
	return nil
}

// CreateItems inserts items and sets their IDs.
func (st *store) CreateItems(ctx context.Context, items []*layout.Item) error {
	query := `
		INSERT INTO items (
			kind, title, target, container, screen,
			cell_x, cell_y, span_x, span_y, min_span_x, min_span_y
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, it := range items {
		result, err := st.q.ExecContext(ctx, query,
			string(it.Kind), it.Title, it.Target, it.Container, it.Screen,
			it.CellX, it.CellY, it.SpanX, it.SpanY, it.MinSpanX, it.MinSpanY,
		)
		if err != nil {
			return fmt.Errorf("inserting item %q: %w", it.Title, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting last insert id: %w", err)
		}
		it.ID = id
	}
	return nil
}

// DeleteAllItems removes every item of any container.
func (st *store) DeleteAllItems(ctx context.Context) error {
	if _, err := st.q.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("deleting items: %w", err)
	}
	return nil
}

// NextScreenID returns one more than the highest screen id in use or
// handed out earlier by this store.
func (st *store) NextScreenID(ctx context.Context) (int64, error) {
	var maxScreen sql.NullInt64
	query := `SELECT MAX(screen) FROM items WHERE container = ?`
	if err := st.q.QueryRowContext(ctx, query, layout.ContainerDesktop).Scan(&maxScreen); err != nil {
		return 0, fmt.Errorf("querying max screen: %w", err)
	}

	next := int64(0)
	if maxScreen.Valid {
		next = maxScreen.Int64 + 1
	}
	if st.lastScreen != nil && *st.lastScreen >= next {
		next = *st.lastScreen + 1
	}
	st.lastScreen = &next
	return next, nil
}

// Geometry returns the stored geometry.
func (st *store) Geometry(ctx context.Context) (layout.Geometry, bool, error) {
	size, ok, err := st.setting(ctx, keyWorkspaceSize)
	if err != nil || !ok {
		return layout.Geometry{}, false, err
	}
	hotseat, _, err := st.setting(ctx, keyHotseatCount)
	if err != nil {
		return layout.Geometry{}, false, err
	}

	var g layout.Geometry
	cols, rows, found := strings.Cut(size, ",")
	if !found {
		return layout.Geometry{}, false, fmt.Errorf("parsing %s %q: missing comma", keyWorkspaceSize, size)
	}
	if g.Workspace.Width, err = strconv.Atoi(cols); err != nil {
		return layout.Geometry{}, false, fmt.Errorf("parsing %s %q: %w", keyWorkspaceSize, size, err)
	}
	if g.Workspace.Height, err = strconv.Atoi(rows); err != nil {
		return layout.Geometry{}, false, fmt.Errorf("parsing %s %q: %w", keyWorkspaceSize, size, err)
	}
	if hotseat != "" {
		if g.Hotseat, err = strconv.Atoi(hotseat); err != nil {
			return layout.Geometry{}, false, fmt.Errorf("parsing %s %q: %w", keyHotseatCount, hotseat, err)
		}
	}
	return g, true, nil
}

// SetGeometry stores g.
func (st *store) SetGeometry(ctx context.Context, g layout.Geometry) error {
	size := fmt.Sprintf("%d,%d", g.Workspace.Width, g.Workspace.Height)
	if err := st.setSetting(ctx, keyWorkspaceSize, size); err != nil {
		return err
	}
	return st.setSetting(ctx, keyHotseatCount, strconv.Itoa(g.Hotseat))
}

func (st *store) setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := st.q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, true, nil
}

func (st *store) setSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := st.q.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// RecordRun appends run to the history, filling in its ID and time if unset.
func (st *store) RecordRun(ctx context.Context, run *layout.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO migration_runs (id, source, target, updated, deleted, new_screens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := st.q.ExecContext(ctx, query,
		run.ID,
		run.Source.String(),
		run.Target.String(),
		run.Updated,
		run.Deleted,
		run.NewScreens,
		run.CreatedAt.UTC().Format(runTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (st *store) ListRuns(ctx context.Context, limit int) ([]layout.RunRecord, error) {
	query := `
		SELECT id, source, target, updated, deleted, new_screens, created_at
		FROM migration_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := st.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []layout.RunRecord
	for rows.Next() {
		var (
			r                     layout.RunRecord
			source, target, stamp string
		)
		if err := rows.Scan(&r.ID, &source, &target, &r.Updated, &r.Deleted, &r.NewScreens, &stamp); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.Source, err = layout.ParseGeometry(source); err != nil {
			return nil, fmt.Errorf("parsing run source: %w", err)
		}
		if r.Target, err = layout.ParseGeometry(target); err != nil {
			return nil, fmt.Errorf("parsing run target: %w", err)
		}
		if r.CreatedAt, err = time.Parse(runTimeLayout, stamp); err != nil {
			return nil, fmt.Errorf("parsing run time: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
