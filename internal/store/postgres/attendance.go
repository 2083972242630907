package postgres

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
		VALUES ($1, $2, $3, $4, $5)`,
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

	var b clauseBuilder
	b.addEmployeeFilter("e.", filter.EmployeeFilter)
	if filter.StartDate != "" {
		b.add("a.date >= $%d", filter.StartDate)
	}
	if filter.EndDate != "" {
		b.add("a.date <= $%d", filter.EndDate)
	}
	if filter.Tag != nil {
		b.add("a.tag = $%d", *filter.Tag)
	}

	query := `
		SELECT a.record_id, a.employee_id, a.date, a.time, a.tag,
		       COALESCE(e.name, ''), COALESCE(e.department, ''),
		       COALESCE(e.position, ''), COALESCE(e.employee_code, '')
		FROM attendance_records a
		LEFT JOIN employees e ON e.employee_id = a.employee_id` +
		b.whereSQL() + " ORDER BY a.date DESC, a.time DESC"

	rows, err := s.db.QueryContext(ctx, query, b.args...)
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
// returns the previous value.
func (s *Store) UpdateAttendanceTag(ctx context.Context, recordID int64, tag string) (string, error) {
	s.attMu.Lock()
	defer s.attMu.Unlock()

	var oldTag string
	err := s.db.QueryRowContext(ctx,
		"SELECT tag FROM attendance_records WHERE record_id = $1", recordID,
	).Scan(&oldTag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up attendance record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE attendance_records SET tag = $1 WHERE record_id = $2", tag, recordID)
	if err != nil {
		return "", fmt.Errorf("updating attendance tag: %w", err)
	}
	return oldTag, nil
}
