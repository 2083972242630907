package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// AddAttendance records a clock event for the current wall-clock moment and
// tags it via the configured hour windows.
func (s *Store) AddAttendance(ctx context.Context, employeeID int64) (*store.AttendanceWithEmployee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()

	emp, err := s.getEmployeeLocked(ctx, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrInvalidReference
		}
		return nil, err
	}

	s.attMu.Lock()
	defer s.attMu.Unlock()

	now := s.now()
	record := store.AttendanceRecord{
		EmployeeID: employeeID,
		Date:       now.Format(store.DateFormat),
		Time:       now.Format(store.TimeFormat),
		Tag:        s.windows.TagForHour(now.Hour()),
	}

	record.RecordID, err = s.nextID(ctx, "attendance_records", "record_id")
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attendance_records (record_id, employee_id, date, time, tag)
		VALUES (?, ?, ?, ?, ?)`,
		record.RecordID, record.EmployeeID, record.Date, record.Time, string(record.Tag))
	if err != nil {
		return nil, fmt.Errorf("inserting attendance record: %w", err)
	}

	return &store.AttendanceWithEmployee{
		AttendanceRecord: record,
		Name:             emp.Name,
		Department:       emp.Department,
		Position:         emp.Position,
		EmployeeCode:     emp.EmployeeCode,
	}, nil
}

// ListAttendance returns attendance records joined with employees, filtered
// and sorted most recent first.
func (s *Store) ListAttendance(ctx context.Context, filter store.AttendanceFilter) ([]store.AttendanceWithEmployee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()
	s.attMu.RLock()
	defer s.attMu.RUnlock()

	query := `
		SELECT a.record_id, a.employee_id, a.date, a.time, a.tag,
		       COALESCE(e.name, ''), COALESCE(e.department, ''),
		       COALESCE(e.position, ''), COALESCE(e.employee_code, '')
		FROM attendance_records a
		LEFT JOIN employees e ON e.employee_id = a.employee_id`

	where, args := employeeFilterClauses("e.", filter.EmployeeFilter)
	if filter.StartDate != "" {
		where = append(where, "a.date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where = append(where, "a.date <= ?")
		args = append(args, filter.EndDate)
	}
	if filter.Tag != nil {
		where = append(where, "a.tag = ?")
		args = append(args, *filter.Tag)
	}
	query += whereSQL(where) + " ORDER BY a.date DESC, a.time DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	defer rows.Close()

	var records []store.AttendanceWithEmployee
	for rows.Next() {
		var rec store.AttendanceWithEmployee
		var tag string
		err := rows.Scan(&rec.RecordID, &rec.EmployeeID, &rec.Date, &rec.Time, &tag,
			&rec.Name, &rec.Department, &rec.Position, &rec.EmployeeCode)
		if err != nil {
			return nil, fmt.Errorf("scanning attendance record: %w", err)
		}
		rec.Tag = attendance.Tag(tag)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateAttendanceTag overwrites the tag of the record with the given id and
// returns the previous value. The record is located by its key, never by a
// positional index, so earlier filtering or reordering cannot misdirect it.
func (s *Store) UpdateAttendanceTag(ctx context.Context, recordID int64, tag string) (string, error) {
	s.attMu.Lock()
	defer s.attMu.Unlock()

	var oldTag string
	err := s.db.QueryRowContext(ctx,
		"SELECT tag FROM attendance_records WHERE record_id = ?", recordID,
	).Scan(&oldTag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up attendance record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE attendance_records SET tag = ? WHERE record_id = ?", tag, recordID)
	if err != nil {
		return "", fmt.Errorf("updating attendance tag: %w", err)
	}
	return oldTag, nil
}

// getEmployeeLocked reads one employee without taking the employees lock;
// the caller already holds it.
func (s *Store) getEmployeeLocked(ctx context.Context, employeeID int64) (*store.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE employee_id = ?", employeeID)
	return scanEmployee(row)
}
