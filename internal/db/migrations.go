package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			kind        TEXT NOT NULL,
			title       TEXT NOT NULL DEFAULT '',
			target      TEXT NOT NULL DEFAULT '',
			container   INTEGER NOT NULL,
			screen      INTEGER NOT NULL DEFAULT 0,
			cell_x      INTEGER NOT NULL DEFAULT 0,
			cell_y      INTEGER NOT NULL DEFAULT 0,
			span_x      INTEGER NOT NULL DEFAULT 1,
			span_y      INTEGER NOT NULL DEFAULT 1,
			min_span_x  INTEGER NOT NULL DEFAULT 0,
			min_span_y  INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_items_container ON items(container, screen);

		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS migration_runs (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			target      TEXT NOT NULL,
			updated     INTEGER NOT NULL DEFAULT 0,
			deleted     INTEGER NOT NULL DEFAULT 0,
			new_screens INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
