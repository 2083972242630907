package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/face-attendance/internal/legacy"
	"github.com/kozaktomas/face-attendance/internal/store"
)

func TestImportLegacyPreservesIDs(t *testing.T) {
	s := newTestStore(t, testClock)
	ctx := context.Background()

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	data := &legacy.Data{
		Employees: []store.Employee{
			{EmployeeID: 3, Name: "Alice", Department: "Engineering", UpdatedAt: &stamp},
			{EmployeeID: 7, Name: "Bob", Department: "Sales"},
		},
		Encodings: []store.FaceEncoding{
			{EncodingID: 5, EmployeeID: 3, ImagePath: "faces/alice.jpg", Vector: []float64{1, 0}},
		},
		Attendance: []store.AttendanceRecord{
			{RecordID: 9, EmployeeID: 7, Date: "2024-03-01", Time: "08:05:00", Tag: "check-in"},
		},
	}
	require.NoError(t, s.ImportLegacy(ctx, data))

	alice, err := s.GetEmployeeByID(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "Alice", alice.Name)
	require.NotNil(t, alice.UpdatedAt)

	faces, err := s.ListFaceEncodings(ctx, 3)
	require.NoError(t, err)
	require.Len(t, faces, 1)
	require.Equal(t, int64(5), faces[0].EncodingID)
	require.Equal(t, []float64{1, 0}, faces[0].Vector)

	records, err := s.ListAttendance(ctx, store.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(9), records[0].RecordID)
	require.Equal(t, "Bob", records[0].Name)

	// New ids continue above the imported ones.
	id, err := s.UpsertEmployeeByName(ctx, "Carol", "", "", "")
	require.NoError(t, err)
	require.Equal(t, int64(8), id)
}

func TestImportLegacyRollsBackOnConflict(t *testing.T) {
	s := newTestStore(t, testClock)
	ctx := context.Background()

	_, err := s.UpsertEmployeeByName(ctx, "Alice", "", "", "")
	require.NoError(t, err)

	data := &legacy.Data{
		Employees: []store.Employee{
			{EmployeeID: 2, Name: "Bob"},
			{EmployeeID: 1, Name: "Clash"}, // collides with Alice's id
		},
	}
	require.Error(t, s.ImportLegacy(ctx, data))

	// Nothing from the failed import stuck.
	_, err = s.GetEmployeeByName(ctx, "Bob")
	require.ErrorIs(t, err, store.ErrNotFound)
}
