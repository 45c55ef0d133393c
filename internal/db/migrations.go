package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
)

// Migration represents a single schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: store_meta, tasks, import_sources",
		SQL:         migration001SQL,
	},
	{
		Version:     2,
		Description: "add measures table for saved aggregates",
		SQL:         migration002SQL,
	},
}

const migration001SQL = `
CREATE TABLE store_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE tasks (
    id            INTEGER PRIMARY KEY,
    title         TEXT NOT NULL,
    company       TEXT NOT NULL,
    document_type TEXT NOT NULL,
    department    TEXT NOT NULL,
    priority      TEXT NOT NULL,
    status        TEXT NOT NULL,
    assigned_to   TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL,
    due_at        TEXT NOT NULL,
    completed_at  TEXT,
    description   TEXT NOT NULL DEFAULT '',
    source        TEXT NOT NULL
);

CREATE TABLE import_sources (
    source      TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    batch_id    TEXT NOT NULL DEFAULT '',
    task_ids    TEXT NOT NULL DEFAULT '[]',
    imported_at TEXT NOT NULL
);

CREATE INDEX idx_tasks_status ON tasks(status);
CREATE INDEX idx_tasks_assigned_to ON tasks(assigned_to);
`

const migration002SQL = `
CREATE TABLE IF NOT EXISTS measures (
    name         TEXT PRIMARY KEY,
    workbook     TEXT NOT NULL DEFAULT '',
    sheet        TEXT NOT NULL DEFAULT '',
    column_name  TEXT NOT NULL,
    operation    TEXT NOT NULL,
    filters      TEXT NOT NULL DEFAULT '[]',
    last_value   REAL,
    evaluated_at TEXT,
    created_at   TEXT NOT NULL
);
`

// Migrate runs all pending migrations inside transactions.
func Migrate(db *sql.DB, log *logging.Logger) error {
	if db == nil {
		return errors.New("db is nil")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY, applied_at DATETIME)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, migration.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", migration.Version, err)
		}

		log.Info().Int("version", migration.Version).Msg("applied migration: " + migration.Description)
		currentVersion = migration.Version
	}

	return nil
}

// CurrentVersion returns the current schema version (0 if no migrations applied).
func CurrentVersion(db *sql.DB) (int, error) {
	if db == nil {
		return 0, errors.New("db is nil")
	}

	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	var version int
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("query schema_version: %w", err)
	}
	return version, nil
}
