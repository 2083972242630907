// Package sqlite implements the entity store on an embedded SQLite database.
// It is the default backend: zero configuration, single file on disk, pure Go
// driver. All contract semantics (id assignment, locking, join behavior)
// match the PostgreSQL backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
	_ "modernc.org/sqlite"
)

var _ store.Store = (*Store)(nil)

// Store is a SQLite-backed entity store.
//
// Each table has its own reader/writer lock. Writers hold the write lock for
// the whole read-max/insert cycle so two concurrent inserts can never read
// the same current max id; readers are excluded from in-flight rewrites of
// the same table but run concurrently with each other. Lock order when a
// call touches more than one table: employees, then faces, then attendance.
type Store struct {
	db      *sql.DB
	windows attendance.Windows
	now     func() time.Time

	empMu  sync.RWMutex
	faceMu sync.RWMutex
	attMu  sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall-clock source used for attendance records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (or creates) the database file, applies pending migrations and
// returns a ready store. Attendance records created through this store are
// tagged using the given hour windows.
func Open(path string, windows attendance.Windows, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL improves concurrent read behavior; a single connection keeps the
	// writer path serialized at the driver level as well.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	s := &Store{
		db:      db,
		windows: windows,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// nextID returns max(column)+1 for a table, or 1 when the table is empty.
// Callers must hold the table's write lock.
func (s *Store) nextID(ctx context.Context, table, column string) (int64, error) {
	var id int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", column, table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("computing next %s.%s: %w", table, column, err)
	}
	return id, nil
}

// employeeExists reports whether an employee row exists. Callers must hold
// at least the employees read lock.
func (s *Store) employeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM employees WHERE employee_id = ?)", employeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking employee exists: %w", err)
	}
	return exists, nil
}
