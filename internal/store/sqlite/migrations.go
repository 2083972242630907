package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one versioned schema step. Migrations run in order inside a
// transaction; the schema_migrations table records what has been applied.
type migration struct {
	version    int
	name       string
	statements []string
}

// The v1 schema matches the original deployment's tables. v2 models the
// columns that were later bolted onto existing data files (employee_code,
// updated_at) as an explicit step instead of column-presence checks on read.
var migrations = []migration{
	{
		version: 1,
		name:    "base tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS employees (
				employee_id INTEGER PRIMARY KEY,
				name        TEXT NOT NULL,
				department  TEXT NOT NULL DEFAULT '',
				position    TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS face_encodings (
				encoding_id INTEGER PRIMARY KEY,
				employee_id INTEGER NOT NULL,
				image_path  TEXT NOT NULL,
				encoding    TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS attendance_records (
				record_id   INTEGER PRIMARY KEY,
				employee_id INTEGER NOT NULL,
				date        TEXT NOT NULL,
				time        TEXT NOT NULL,
				tag         TEXT NOT NULL DEFAULT ''
			)`,
		},
	},
	{
		version: 2,
		name:    "employee code and update stamp",
		statements: []string{
			`ALTER TABLE employees ADD COLUMN employee_code TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE employees ADD COLUMN updated_at TEXT`,
		},
	},
	{
		version: 3,
		name:    "lookup indexes",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_employees_name ON employees(name)`,
			`CREATE INDEX IF NOT EXISTS idx_face_encodings_employee ON face_encodings(employee_id)`,
			`CREATE INDEX IF NOT EXISTS idx_attendance_employee ON attendance_records(employee_id)`,
			`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance_records(date, time)`,
		},
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", m.version, err)
		}
		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}
	return nil
}
