// Package store defines the entity store contract shared by all backends:
// employees, face encodings and attendance records with surrogate integer
// keys, fixed lookup and filter operations, and read-time joins.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup by key or name fails.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when an employee rename collides with
	// another employee.
	ErrDuplicateName = errors.New("employee name already in use")
	// ErrInvalidReference is returned when a foreign key target is missing,
	// e.g. adding a face or attendance record for an unknown employee.
	ErrInvalidReference = errors.New("referenced employee does not exist")
	// ErrInvalidInput is returned for malformed values rejected at the store
	// boundary, such as an empty vector.
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the entity store. Implementations serialize mutating operations
// per table so surrogate key assignment never races, and exclude readers
// from in-flight rewrites of the same table. Mutations never cascade:
// deleting faces or attendance never touches the employee row.
type Store interface {
	// UpsertEmployeeByName inserts an employee or, if the name exists,
	// overwrites department/position/code with the non-empty inputs.
	// Empty inputs never erase existing values. Returns the employee id.
	UpsertEmployeeByName(ctx context.Context, name, department, position, code string) (int64, error)

	// GetEmployeeByID returns ErrNotFound if the id is unknown.
	GetEmployeeByID(ctx context.Context, employeeID int64) (*Employee, error)

	// GetEmployeeByName returns ErrNotFound if no employee has the name.
	GetEmployeeByName(ctx context.Context, name string) (*Employee, error)

	// ListEmployees returns employees matching the filter, ordered by id.
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)

	// UpdateEmployee overwrites all four editable fields. Returns
	// ErrNotFound for an unknown id and ErrDuplicateName if another
	// employee already has the target name.
	UpdateEmployee(ctx context.Context, employeeID int64, name, department, position, code string) error

	// AddFaceEncoding stores a vector for an employee and returns the new
	// encoding id. Returns ErrInvalidReference for an unknown employee.
	AddFaceEncoding(ctx context.Context, employeeID int64, imagePath string, vector []float64) (int64, error)

	// ListFaceEncodings returns one employee's encodings ordered by id.
	ListFaceEncodings(ctx context.Context, employeeID int64) ([]FaceEncoding, error)

	// CountFaceEncodings returns the number of encodings for an employee.
	CountFaceEncodings(ctx context.Context, employeeID int64) (int, error)

	// ListAllFaceEncodings returns every encoding left-joined with its
	// employee, ordered by encoding id. Encodings whose employee is gone
	// surface with empty employee fields rather than being dropped.
	ListAllFaceEncodings(ctx context.Context) ([]FaceWithEmployee, error)

	// DeleteFaceEncoding removes one encoding by id.
	DeleteFaceEncoding(ctx context.Context, encodingID int64) error

	// AddAttendance creates an attendance record for the current wall-clock
	// moment, tagging it via the configured hour windows. Returns the
	// created record with resolved employee fields.
	AddAttendance(ctx context.Context, employeeID int64) (*AttendanceWithEmployee, error)

	// ListAttendance returns attendance records left-joined with employees,
	// filtered and sorted by (date, time) descending.
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceWithEmployee, error)

	// UpdateAttendanceTag overwrites the tag of a record located by its id,
	// never by position, and returns the previous tag value.
	UpdateAttendanceTag(ctx context.Context, recordID int64, tag string) (string, error)

	Close() error
}
