package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAttendanceHandler_Add_Success(t *testing.T) {
	s := newTestStore(t)
	facesHandler := NewFacesHandler(s, newTestMatcher(s))
	handler := NewAttendanceHandler(s)

	reg := registerFace(t, facesHandler, RegisterRequest{
		Name:       "Alice",
		Department: "Engineering",
		Encoding:   []float64{1, 0},
	})

	recorder := httptest.NewRecorder()
	handler.Add(recorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{
		EmployeeID: reg.EmployeeID,
	}))

	assertStatusCode(t, recorder, http.StatusCreated)

	var rec AttendanceResponse
	parseJSONResponse(t, recorder, &rec)

	// The fixed test clock is 08:15.
	if rec.Tag != "check-in" {
		t.Errorf("expected check-in tag, got %q", rec.Tag)
	}
	if rec.Date != "2024-03-15" || rec.Time != "08:15:00" {
		t.Errorf("unexpected timestamp: %s %s", rec.Date, rec.Time)
	}
	if rec.Name != "Alice" || rec.Department != "Engineering" {
		t.Errorf("expected joined employee fields, got %+v", rec)
	}
}

func TestAttendanceHandler_Add_UnknownEmployee(t *testing.T) {
	handler := NewAttendanceHandler(newTestStore(t))

	recorder := httptest.NewRecorder()
	handler.Add(recorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{
		EmployeeID: 42,
	}))

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestAttendanceHandler_Add_MissingEmployeeID(t *testing.T) {
	handler := NewAttendanceHandler(newTestStore(t))

	recorder := httptest.NewRecorder()
	handler.Add(recorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{}))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "employee_id is required")
}

func TestAttendanceHandler_List_TagFilter(t *testing.T) {
	s := newTestStore(t)
	facesHandler := NewFacesHandler(s, newTestMatcher(s))
	handler := NewAttendanceHandler(s)

	reg := registerFace(t, facesHandler, RegisterRequest{Name: "Alice", Encoding: []float64{1, 0}})

	addRecorder := httptest.NewRecorder()
	handler.Add(addRecorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{
		EmployeeID: reg.EmployeeID,
	}))
	assertStatusCode(t, addRecorder, http.StatusCreated)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance?tag=check-in", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var records []AttendanceResponse
	parseJSONResponse(t, recorder, &records)
	if len(records) != 1 {
		t.Fatalf("expected 1 check-in record, got %d", len(records))
	}

	// No check-out records exist yet.
	recorder = httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance?tag=check-out", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	parseJSONResponse(t, recorder, &records)
	if len(records) != 0 {
		t.Errorf("expected no check-out records, got %d", len(records))
	}
}

func TestAttendanceHandler_List_TagNoneSelectsUntagged(t *testing.T) {
	s := newTestStore(t)
	facesHandler := NewFacesHandler(s, newTestMatcher(s))
	handler := NewAttendanceHandler(s)

	reg := registerFace(t, facesHandler, RegisterRequest{Name: "Alice", Encoding: []float64{1, 0}})

	addRecorder := httptest.NewRecorder()
	handler.Add(addRecorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{
		EmployeeID: reg.EmployeeID,
	}))
	assertStatusCode(t, addRecorder, http.StatusCreated)

	// The only record is a check-in, so tag=none matches nothing.
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance?tag=none", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var records []AttendanceResponse
	parseJSONResponse(t, recorder, &records)
	if len(records) != 0 {
		t.Errorf("tag=none must select only untagged records, got %d", len(records))
	}
}

func TestAttendanceHandler_List_UnknownTag(t *testing.T) {
	handler := NewAttendanceHandler(newTestStore(t))

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance?tag=bogus", nil))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "unknown tag: bogus")
}

func TestAttendanceHandler_List_DateRange(t *testing.T) {
	s := newTestStore(t)
	facesHandler := NewFacesHandler(s, newTestMatcher(s))
	handler := NewAttendanceHandler(s)

	reg := registerFace(t, facesHandler, RegisterRequest{Name: "Alice", Encoding: []float64{1, 0}})

	addRecorder := httptest.NewRecorder()
	handler.Add(addRecorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{
		EmployeeID: reg.EmployeeID,
	}))
	assertStatusCode(t, addRecorder, http.StatusCreated)

	// The record lands on 2024-03-15; a range ending before that excludes it.
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance?end_date=2024-03-14", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var records []AttendanceResponse
	parseJSONResponse(t, recorder, &records)
	if len(records) != 0 {
		t.Errorf("expected no records before 2024-03-15, got %d", len(records))
	}

	recorder = httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/attendance?start_date=2024-03-01&end_date=2024-03-31", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	parseJSONResponse(t, recorder, &records)
	if len(records) != 1 {
		t.Errorf("expected 1 record inside the range, got %d", len(records))
	}
}

func TestAttendanceHandler_UpdateTag_Success(t *testing.T) {
	s := newTestStore(t)
	facesHandler := NewFacesHandler(s, newTestMatcher(s))
	handler := NewAttendanceHandler(s)

	reg := registerFace(t, facesHandler, RegisterRequest{Name: "Alice", Encoding: []float64{1, 0}})

	addRecorder := httptest.NewRecorder()
	handler.Add(addRecorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{
		EmployeeID: reg.EmployeeID,
	}))
	var created AttendanceResponse
	parseJSONResponse(t, addRecorder, &created)

	req := jsonRequest("PUT", "/api/v1/attendance/1", UpdateTagRequest{Tag: "late"})
	req = requestWithChiParams(req, map[string]string{"recordID": "1"})
	recorder := httptest.NewRecorder()

	handler.UpdateTag(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp UpdateTagResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.OldTag != "check-in" || resp.NewTag != "late" {
		t.Errorf("unexpected tag transition: %+v", resp)
	}
}

func TestAttendanceHandler_UpdateTag_NoneStoresEmpty(t *testing.T) {
	s := newTestStore(t)
	facesHandler := NewFacesHandler(s, newTestMatcher(s))
	handler := NewAttendanceHandler(s)

	reg := registerFace(t, facesHandler, RegisterRequest{Name: "Alice", Encoding: []float64{1, 0}})

	addRecorder := httptest.NewRecorder()
	handler.Add(addRecorder, jsonRequest("POST", "/api/v1/attendance", AddAttendanceRequest{
		EmployeeID: reg.EmployeeID,
	}))
	assertStatusCode(t, addRecorder, http.StatusCreated)

	req := jsonRequest("PUT", "/api/v1/attendance/1", UpdateTagRequest{Tag: "none"})
	req = requestWithChiParams(req, map[string]string{"recordID": "1"})
	recorder := httptest.NewRecorder()

	handler.UpdateTag(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp UpdateTagResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.NewTag != "" {
		t.Errorf("tag 'none' must be stored as empty, got %q", resp.NewTag)
	}
}

func TestAttendanceHandler_UpdateTag_UnknownTag(t *testing.T) {
	handler := NewAttendanceHandler(newTestStore(t))

	req := jsonRequest("PUT", "/api/v1/attendance/1", UpdateTagRequest{Tag: "vacation"})
	req = requestWithChiParams(req, map[string]string{"recordID": "1"})
	recorder := httptest.NewRecorder()

	handler.UpdateTag(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "unknown tag: vacation")
}

func TestAttendanceHandler_UpdateTag_NotFound(t *testing.T) {
	handler := NewAttendanceHandler(newTestStore(t))

	req := jsonRequest("PUT", "/api/v1/attendance/42", UpdateTagRequest{Tag: "late"})
	req = requestWithChiParams(req, map[string]string{"recordID": "42"})
	recorder := httptest.NewRecorder()

	handler.UpdateTag(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}
