package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/matcher"
	"github.com/kozaktomas/face-attendance/internal/store/sqlite"
)

// testClock is 08:15, inside the check-in window.
var testClock = time.Date(2024, 3, 15, 8, 15, 0, 0, time.UTC)

// newTestStore opens a throwaway database with a fixed clock.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(path, attendance.DefaultWindows(),
		sqlite.WithClock(func() time.Time { return testClock }))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestMatcher builds a matcher over the store with image checks disabled.
func newTestMatcher(s *sqlite.Store) *matcher.Matcher {
	return matcher.New(s, matcher.Thresholds{High: 0.75, Medium: 0.5},
		matcher.WithImageCheck(func(string) bool { return true }))
}

// jsonRequest creates a request with a JSON body.
func jsonRequest(method, path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// registerFace stores a face through the handler and returns the assigned ids.
func registerFace(t *testing.T, handler *FacesHandler, req RegisterRequest) RegisterResponse {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.Register(recorder, jsonRequest("POST", "/api/v1/faces", req))
	assertStatusCode(t, recorder, http.StatusCreated)

	var resp RegisterResponse
	parseJSONResponse(t, recorder, &resp)
	return resp
}
