package store

import (
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// Employee is a registered person. EmployeeID is a surrogate key assigned by
// the store; EmployeeCode is the external business identifier.
type Employee struct {
	EmployeeID   int64
	Name         string
	Department   string
	Position     string
	EmployeeCode string
	UpdatedAt    *time.Time
}

// FaceEncoding is a stored feature vector for one registered face capture.
// The vector is produced by an external embedding model; only the path of the
// backing image is referenced here, the file itself is owned elsewhere.
type FaceEncoding struct {
	EncodingID int64
	EmployeeID int64
	ImagePath  string
	Vector     []float64
}

// AttendanceRecord is a single clock event. Date and Time are kept as fixed
// format strings ("2006-01-02", "15:04:05") so date-range filtering can rely
// on lexicographic order.
type AttendanceRecord struct {
	RecordID   int64
	EmployeeID int64
	Date       string
	Time       string
	Tag        attendance.Tag
}

// FaceWithEmployee is the read-time left join of a face encoding with its
// employee. Employee fields stay empty when the employee row is gone.
type FaceWithEmployee struct {
	FaceEncoding
	Name         string
	Department   string
	Position     string
	EmployeeCode string
}

// AttendanceWithEmployee is the read-time left join of an attendance record
// with its employee.
type AttendanceWithEmployee struct {
	AttendanceRecord
	Name         string
	Department   string
	Position     string
	EmployeeCode string
}

// EmployeeFilter holds optional conjunctive predicates for employee listings.
// Every field is a case-insensitive substring match; the empty string means
// no constraint on that field.
type EmployeeFilter struct {
	Name         string
	Department   string
	Position     string
	EmployeeCode string
}

// AttendanceFilter holds optional conjunctive predicates for attendance
// listings. StartDate/EndDate bound the record date inclusively. Tag is an
// exact match: nil means any tag, a pointer to "" selects untagged records.
type AttendanceFilter struct {
	EmployeeFilter
	StartDate string
	EndDate   string
	Tag       *string
}

// DateFormat and TimeFormat are the fixed layouts for attendance records.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04:05"
)
