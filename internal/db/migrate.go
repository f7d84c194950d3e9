package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillUpdatedAt(db); err != nil {
		return fmt.Errorf("backfilling schedule_items updated_at: %w", err)
	}
	return nil
}

// migrateBackfillUpdatedAt fills updated_at for rows written before the
// column existed.
func migrateBackfillUpdatedAt(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(),
		`UPDATE schedule_items SET updated_at = created_at WHERE updated_at = ''`)
	return err
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS captures (
		id           TEXT PRIMARY KEY,
		text         TEXT NOT NULL,
		source       TEXT NOT NULL DEFAULT 'manual'
		             CHECK(source IN ('manual','stdin','simulated')),
		is_processed INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS schedule_items (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL CHECK(length(trim(title)) > 0),
		start_at         TEXT NOT NULL,
		end_at           TEXT CHECK(end_at IS NULL OR end_at > start_at),
		mode             TEXT CHECK(mode IS NULL OR mode IN ('in_person','online')),
		location_or_link TEXT NOT NULL DEFAULT '',
		notes            TEXT NOT NULL DEFAULT '',
		capture_id       TEXT REFERENCES captures(id) ON DELETE SET NULL,
		created_at       TEXT NOT NULL
	)`,

	`ALTER TABLE schedule_items ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_schedule_items_start ON schedule_items(start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_items_capture ON schedule_items(capture_id)`,
	`CREATE INDEX IF NOT EXISTS idx_captures_created ON captures(created_at)`,
}
