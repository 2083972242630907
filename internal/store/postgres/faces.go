package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-attendance/internal/store"
)

// AddFaceEncoding stores a feature vector for an employee. The core works in
// float64; pgvector stores float32, so the vector is narrowed on write and
// widened on read.
func (s *Store) AddFaceEncoding(ctx context.Context, employeeID int64, imagePath string, vector []float64) (int64, error) {
	if len(vector) == 0 {
		return 0, fmt.Errorf("%w: empty vector", store.ErrInvalidInput)
	}
	if len(vector) != s.dim {
		return 0, fmt.Errorf("%w: vector has %d dimensions, store expects %d", store.ErrInvalidInput, len(vector), s.dim)
	}

	s.empMu.RLock()
	defer s.empMu.RUnlock()

	exists, err := s.employeeExists(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, store.ErrInvalidReference
	}

	s.faceMu.Lock()
	defer s.faceMu.Unlock()

	id, err := s.nextID(ctx, "face_encodings", "encoding_id")
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO face_encodings (encoding_id, employee_id, image_path, encoding)
		VALUES ($1, $2, $3, $4)`,
		id, employeeID, imagePath, pgvector.NewVector(narrowVector(vector)))
	if err != nil {
		return 0, fmt.Errorf("inserting face encoding: %w", err)
	}
	return id, nil
}

// ListFaceEncodings returns one employee's encodings ordered by id.
func (s *Store) ListFaceEncodings(ctx context.Context, employeeID int64) ([]store.FaceEncoding, error) {
	s.faceMu.RLock()
	defer s.faceMu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT encoding_id, employee_id, image_path, encoding
		FROM face_encodings
		WHERE employee_id = $1
		ORDER BY encoding_id`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("listing face encodings: %w", err)
	}
	defer rows.Close()

	var encodings []store.FaceEncoding
	for rows.Next() {
		var enc store.FaceEncoding
		var vec pgvector.Vector
		if err := rows.Scan(&enc.EncodingID, &enc.EmployeeID, &enc.ImagePath, &vec); err != nil {
			return nil, fmt.Errorf("scanning face encoding: %w", err)
		}
		enc.Vector = widenVector(vec.Slice())
		encodings = append(encodings, enc)
	}
	return encodings, rows.Err()
}

// CountFaceEncodings returns the number of stored encodings for an employee.
func (s *Store) CountFaceEncodings(ctx context.Context, employeeID int64) (int, error) {
	s.faceMu.RLock()
	defer s.faceMu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM face_encodings WHERE employee_id = $1", employeeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting face encodings: %w", err)
	}
	return count, nil
}

// ListAllFaceEncodings returns every encoding left-joined with its employee.
func (s *Store) ListAllFaceEncodings(ctx context.Context) ([]store.FaceWithEmployee, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()
	s.faceMu.RLock()
	defer s.faceMu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.encoding_id, f.employee_id, f.image_path, f.encoding,
		       COALESCE(e.name, ''), COALESCE(e.department, ''),
		       COALESCE(e.position, ''), COALESCE(e.employee_code, '')
		FROM face_encodings f
		LEFT JOIN employees e ON e.employee_id = f.employee_id
		ORDER BY f.encoding_id`)
	if err != nil {
		return nil, fmt.Errorf("listing all face encodings: %w", err)
	}
	defer rows.Close()

	var faces []store.FaceWithEmployee
	for rows.Next() {
		var face store.FaceWithEmployee
		var vec pgvector.Vector
		err := rows.Scan(&face.EncodingID, &face.EmployeeID, &face.ImagePath, &vec,
			&face.Name, &face.Department, &face.Position, &face.EmployeeCode)
		if err != nil {
			return nil, fmt.Errorf("scanning joined face encoding: %w", err)
		}
		face.Vector = widenVector(vec.Slice())
		faces = append(faces, face)
	}
	return faces, rows.Err()
}

// DeleteFaceEncoding removes one encoding. The employee row stays.
func (s *Store) DeleteFaceEncoding(ctx context.Context, encodingID int64) error {
	s.faceMu.Lock()
	defer s.faceMu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM face_encodings WHERE encoding_id = $1", encodingID)
	if err != nil {
		return fmt.Errorf("deleting face encoding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting face encoding: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func narrowVector(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func widenVector(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
