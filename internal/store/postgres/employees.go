package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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
		"SELECT employee_id FROM employees WHERE name = $1", name,
	).Scan(&existingID)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, `
			UPDATE employees
			SET department    = CASE WHEN $1 <> '' THEN $1 ELSE department END,
			    position      = CASE WHEN $2 <> '' THEN $2 ELSE position END,
			    employee_code = CASE WHEN $3 <> '' THEN $3 ELSE employee_code END,
			    updated_at    = $4
			WHERE employee_id = $5`,
			department, position, code, s.now().UTC(), existingID)
		if err != nil {
			return 0, fmt.Errorf("updating employee: %w", err)
		}
		return existingID, nil
	case errors.Is(err, sql.ErrNoRows):
		id, err := s.nextID(ctx, "employees", "employee_id")
		if err != nil {
			return 0, err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO employees (employee_id, name, department, position, employee_code, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, name, department, position, code, s.now().UTC())
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
	return s.getEmployeeLocked(ctx, employeeID)
}

// GetEmployeeByName returns one employee or store.ErrNotFound.
func (s *Store) GetEmployeeByName(ctx context.Context, name string) (*store.Employee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE name = $1", name)
	return scanEmployee(row)
}

// ListEmployees returns employees matching the filter, ordered by id.
func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]store.Employee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()

	var b clauseBuilder
	b.addEmployeeFilter("", filter)
	query := "SELECT " + employeeColumns + " FROM employees" + b.whereSQL() + " ORDER BY employee_id"

	rows, err := s.db.QueryContext(ctx, query, b.args...)
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
		"SELECT employee_id FROM employees WHERE name = $1 AND employee_id <> $2", name, employeeID,
	).Scan(&clashID)
	switch {
	case err == nil:
		return store.ErrDuplicateName
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("checking duplicate name: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE employees
		SET name = $1, department = $2, position = $3, employee_code = $4, updated_at = $5
		WHERE employee_id = $6`,
		name, department, position, code, s.now().UTC(), employeeID)
	if err != nil {
		return fmt.Errorf("updating employee: %w", err)
	}
	return nil
}

func (s *Store) getEmployeeLocked(ctx context.Context, employeeID int64) (*store.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE employee_id = $1", employeeID)
	return scanEmployee(row)
}

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
	var updatedAt sql.NullTime
	if err := row.Scan(&emp.EmployeeID, &emp.Name, &emp.Department, &emp.Position, &emp.EmployeeCode, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning employee: %w", err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		emp.UpdatedAt = &t
	}
	return &emp, nil
}
