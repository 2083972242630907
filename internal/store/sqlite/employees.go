package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/store"
)

const employeeColumns = "employee_id, name, department, position, employee_code, updated_at"

// UpsertEmployeeByName inserts a new employee or updates the existing row
// with the same name. Only non-empty input fields overwrite existing values.
func (s *Store) UpsertEmployeeByName(ctx context.Context, name, department, position, code string) (int64, error) {
	s.empMu.Lock()
	defer s.empMu.Unlock()

	var existingID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT employee_id FROM employees WHERE name = ?", name,
	).Scan(&existingID)
	switch {
	case err == nil:
		stamp := s.now().UTC().Format(time.RFC3339)
		_, err = s.db.ExecContext(ctx, `
			UPDATE employees
			SET department    = CASE WHEN ? <> '' THEN ? ELSE department END,
			    position      = CASE WHEN ? <> '' THEN ? ELSE position END,
			    employee_code = CASE WHEN ? <> '' THEN ? ELSE employee_code END,
			    updated_at    = ?
			WHERE employee_id = ?`,
			department, department, position, position, code, code, stamp, existingID)
		if err != nil {
			return 0, fmt.Errorf("updating employee: %w", err)
		}
		return existingID, nil
	case errors.Is(err, sql.ErrNoRows):
		id, err := s.nextID(ctx, "employees", "employee_id")
		if err != nil {
			return 0, err
		}
		stamp := s.now().UTC().Format(time.RFC3339)
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO employees (employee_id, name, department, position, employee_code, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, name, department, position, code, stamp)
		if err != nil {
			return 0, fmt.Errorf("inserting employee: %w", err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("looking up employee by name: %w", err)
	}
}

// GetEmployeeByID returns one employee or store.ErrNotFound.
func (s *Store) GetEmployeeByID(ctx context.Context, employeeID int64) (*store.Employee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE employee_id = ?", employeeID)
	return scanEmployee(row)
}

// GetEmployeeByName returns one employee or store.ErrNotFound.
func (s *Store) GetEmployeeByName(ctx context.Context, name string) (*store.Employee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE name = ?", name)
	return scanEmployee(row)
}

// ListEmployees returns employees matching the filter, ordered by id.
func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]store.Employee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()

	query := "SELECT " + employeeColumns + " FROM employees"
	where, args := employeeFilterClauses("", filter)
	query += whereSQL(where) + " ORDER BY employee_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var employees []store.Employee
	for rows.Next() {
		emp, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

// UpdateEmployee overwrites all four editable fields of an employee.
func (s *Store) UpdateEmployee(ctx context.Context, employeeID int64, name, department, position, code string) error {
	s.empMu.Lock()
	defer s.empMu.Unlock()

	exists, err := s.employeeExists(ctx, employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}

	var clashID int64
	err = s.db.QueryRowContext(ctx,
		"SELECT employee_id FROM employees WHERE name = ? AND employee_id <> ?", name, employeeID,
	).Scan(&clashID)
	switch {
	case err == nil:
		return store.ErrDuplicateName
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("checking duplicate name: %w", err)
	}

	stamp := s.now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		UPDATE employees
		SET name = ?, department = ?, position = ?, employee_code = ?, updated_at = ?
		WHERE employee_id = ?`,
		name, department, position, code, stamp, employeeID)
	if err != nil {
		return fmt.Errorf("updating employee: %w", err)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row *sql.Row) (*store.Employee, error) {
	emp, err := scanEmployeeRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return emp, err
}

func scanEmployeeRow(row rowScanner) (*store.Employee, error) {
	var emp store.Employee
	var updatedAt sql.NullString
	if err := row.Scan(&emp.EmployeeID, &emp.Name, &emp.Department, &emp.Position, &emp.EmployeeCode, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning employee: %w", err)
	}
	if updatedAt.Valid {
		if t, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
			emp.UpdatedAt = &t
		}
	}
	return &emp, nil
}

// employeeFilterClauses builds conjunctive case-insensitive substring
// predicates for the employee text fields. prefix qualifies column names
// when the employees table appears in a join.
func employeeFilterClauses(prefix string, f store.EmployeeFilter) ([]string, []any) {
	var where []string
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		where = append(where, "instr(lower("+prefix+column+"), lower(?)) > 0")
		args = append(args, value)
	}
	add("name", f.Name)
	add("department", f.Department)
	add("position", f.Position)
	add("employee_code", f.EmployeeCode)
	return where, args
}

func whereSQL(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	out := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}
