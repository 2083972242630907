// Package legacy reads the CSV files produced by the original deployment
// (employees.csv, face_encodings.csv, attendance_records.csv) into typed
// records. Older files predate the employee_code and updated_at columns, so
// column positions are resolved from each file's header instead of being
// assumed. Unparsable rows are skipped and counted, never fatal.
package legacy

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// File names used by the original deployment.
const (
	EmployeesFile  = "employees.csv"
	EncodingsFile  = "face_encodings.csv"
	AttendanceFile = "attendance_records.csv"
)

// Data holds everything read from a legacy data directory.
type Data struct {
	Employees  []store.Employee
	Encodings  []store.FaceEncoding
	Attendance []store.AttendanceRecord
	Skipped    int // rows dropped because they could not be parsed
}

// Load reads all three legacy CSV files from dir. Missing files are treated
// as empty tables so partial exports still import.
func Load(dir string) (*Data, error) {
	var data Data

	if err := loadFile(filepath.Join(dir, EmployeesFile), data.addEmployee); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, EncodingsFile), data.addEncoding); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, AttendanceFile), data.addAttendance); err != nil {
		return nil, err
	}
	return &data, nil
}

// row gives header-keyed access to one CSV record.
type row struct {
	header map[string]int
	fields []string
}

// get returns the named column or "" when the column is absent, which is how
// files written before a schema addition read back.
func (r row) get(name string) string {
	idx, ok := r.header[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

func (r row) getInt64(name string) (int64, error) {
	return strconv.ParseInt(r.get(name), 10, 64)
}

func loadFile(path string, add func(row) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // legacy files have ragged rows

	headerFields, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s header: %w", path, err)
	}
	header := make(map[string]int, len(headerFields))
	for i, name := range headerFields {
		header[name] = i
	}

	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := add(row{header: header, fields: fields}); err != nil {
			log.Printf("skipping %s line %d: %v", filepath.Base(path), line, err)
		}
	}
}

func (d *Data) addEmployee(r row) error {
	id, err := r.getInt64("employee_id")
	if err != nil {
		d.Skipped++
		return fmt.Errorf("bad employee_id: %w", err)
	}
	emp := store.Employee{
		EmployeeID:   id,
		Name:         r.get("name"),
		Department:   r.get("department"),
		Position:     r.get("position"),
		EmployeeCode: r.get("employee_code"),
	}
	if stamp := r.get("updated_at"); stamp != "" {
		if t, err := time.Parse(time.RFC3339, stamp); err == nil {
			emp.UpdatedAt = &t
		}
	}
	d.Employees = append(d.Employees, emp)
	return nil
}

func (d *Data) addEncoding(r row) error {
	id, err := r.getInt64("encoding_id")
	if err != nil {
		d.Skipped++
		return fmt.Errorf("bad encoding_id: %w", err)
	}
	employeeID, err := r.getInt64("employee_id")
	if err != nil {
		d.Skipped++
		return fmt.Errorf("bad employee_id: %w", err)
	}
	var vector []float64
	if err := json.Unmarshal([]byte(r.get("encoding")), &vector); err != nil {
		d.Skipped++
		return fmt.Errorf("unparsable vector: %w", err)
	}
	d.Encodings = append(d.Encodings, store.FaceEncoding{
		EncodingID: id,
		EmployeeID: employeeID,
		ImagePath:  r.get("image_path"),
		Vector:     vector,
	})
	return nil
}

func (d *Data) addAttendance(r row) error {
	id, err := r.getInt64("record_id")
	if err != nil {
		d.Skipped++
		return fmt.Errorf("bad record_id: %w", err)
	}
	employeeID, err := r.getInt64("employee_id")
	if err != nil {
		d.Skipped++
		return fmt.Errorf("bad employee_id: %w", err)
	}
	d.Attendance = append(d.Attendance, store.AttendanceRecord{
		RecordID:   id,
		EmployeeID: employeeID,
		Date:       r.get("date"),
		Time:       r.get("time"),
		Tag:        attendance.Tag(r.get("tag")),
	})
	return nil
}
