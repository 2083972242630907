// Package postgres implements the entity store on PostgreSQL with the
// pgvector extension holding the face encoding vectors. It is the deployment
// backend for installations that already run a database server; semantics
// are identical to the embedded sqlite backend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL-backed entity store. Locking discipline matches the
// sqlite backend: one reader/writer lock per table, writers hold the write
// lock across the read-max/insert cycle, lock order employees → faces →
// attendance when a call spans tables.
type Store struct {
	db      *sql.DB
	windows attendance.Windows
	now     func() time.Time
	dim     int

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

// Open connects to the database, verifies the connection and applies pending
// migrations. dim is the fixed vector dimension for this deployment.
func Open(url string, dim int, windows attendance.Windows, opts ...Option) (*Store, error) {
	if url == "" {
		return nil, errors.New("database URL is required")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid vector dimension %d", dim)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migrate(ctx, db, dim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	s := &Store{
		db:      db,
		windows: windows,
		now:     time.Now,
		dim:     dim,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the connection pool.
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
		"SELECT EXISTS(SELECT 1 FROM employees WHERE employee_id = $1)", employeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking employee exists: %w", err)
	}
	return exists, nil
}

// clauseBuilder accumulates WHERE clauses with numbered placeholders.
type clauseBuilder struct {
	clauses []string
	args    []any
}

func (b *clauseBuilder) add(format string, arg any) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, fmt.Sprintf(format, len(b.args)))
}

func (b *clauseBuilder) whereSQL() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// addEmployeeFilter appends conjunctive case-insensitive substring
// predicates for the employee text fields. prefix qualifies column names
// inside joins.
func (b *clauseBuilder) addEmployeeFilter(prefix string, f store.EmployeeFilter) {
	add := func(column, value string) {
		if value == "" {
			return
		}
		b.add("position(lower($%d) in lower("+prefix+column+")) > 0", value)
	}
	add("name", f.Name)
	add("department", f.Department)
	add("position", f.Position)
	add("employee_code", f.EmployeeCode)
}
