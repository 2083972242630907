package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/legacy"
)

// ImportLegacy loads a legacy CSV export into the database, preserving the
// original ids. It is meant for one-shot migration into a fresh database;
// rows whose ids already exist make the whole import fail and roll back.
func (s *Store) ImportLegacy(ctx context.Context, data *legacy.Data) error {
	s.empMu.Lock()
	defer s.empMu.Unlock()
	s.faceMu.Lock()
	defer s.faceMu.Unlock()
	s.attMu.Lock()
	defer s.attMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, emp := range data.Employees {
		var stamp any
		if emp.UpdatedAt != nil {
			stamp = emp.UpdatedAt.UTC().Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO employees (employee_id, name, department, position, employee_code, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			emp.EmployeeID, emp.Name, emp.Department, emp.Position, emp.EmployeeCode, stamp)
		if err != nil {
			return fmt.Errorf("importing employee %d: %w", emp.EmployeeID, err)
		}
	}

	for _, enc := range data.Encodings {
		blob, err := json.Marshal(enc.Vector)
		if err != nil {
			return fmt.Errorf("encoding vector for encoding %d: %w", enc.EncodingID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO face_encodings (encoding_id, employee_id, image_path, encoding)
			VALUES (?, ?, ?, ?)`,
			enc.EncodingID, enc.EmployeeID, enc.ImagePath, string(blob))
		if err != nil {
			return fmt.Errorf("importing encoding %d: %w", enc.EncodingID, err)
		}
	}

	for _, rec := range data.Attendance {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_records (record_id, employee_id, date, time, tag)
			VALUES (?, ?, ?, ?, ?)`,
			rec.RecordID, rec.EmployeeID, rec.Date, rec.Time, string(rec.Tag))
		if err != nil {
			return fmt.Errorf("importing attendance record %d: %w", rec.RecordID, err)
		}
	}

	return tx.Commit()
}
