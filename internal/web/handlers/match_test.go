package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/matcher"
)

// vectorWithSimilarity builds a unit vector whose cosine similarity against
// the probe [1, 0] is exactly sim.
func vectorWithSimilarity(sim float64) []float64 {
	return []float64{sim, math.Sqrt(1 - sim*sim)}
}

func TestFacesHandler_Match_HighConfidence(t *testing.T) {
	s := newTestStore(t)
	handler := NewFacesHandler(s, newTestMatcher(s))

	registerFace(t, handler, RegisterRequest{Name: "Alice", Encoding: vectorWithSimilarity(0.9)})
	registerFace(t, handler, RegisterRequest{Name: "Bob", Encoding: vectorWithSimilarity(0.3)})

	recorder := httptest.NewRecorder()
	handler.Match(recorder, jsonRequest("POST", "/api/v1/faces/match", MatchRequest{
		Encoding: []float64{1, 0},
	}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result matcher.Result
	parseJSONResponse(t, recorder, &result)

	if result.Tier != matcher.TierHigh {
		t.Fatalf("expected high tier, got %q", result.Tier)
	}
	if result.Best == nil || result.Best.Name != "Alice" {
		t.Errorf("expected Alice as best match, got %+v", result.Best)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("high tier must not carry a candidate list, got %d", len(result.Candidates))
	}
}

func TestFacesHandler_Match_MediumConfidence(t *testing.T) {
	s := newTestStore(t)
	handler := NewFacesHandler(s, newTestMatcher(s))

	registerFace(t, handler, RegisterRequest{Name: "Alice", Encoding: vectorWithSimilarity(0.65)})
	registerFace(t, handler, RegisterRequest{Name: "Bob", Encoding: vectorWithSimilarity(0.55)})

	recorder := httptest.NewRecorder()
	handler.Match(recorder, jsonRequest("POST", "/api/v1/faces/match", MatchRequest{
		Encoding: []float64{1, 0},
	}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result matcher.Result
	parseJSONResponse(t, recorder, &result)

	if result.Tier != matcher.TierMedium {
		t.Fatalf("expected medium tier, got %q", result.Tier)
	}
	if len(result.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(result.Candidates))
	}
	if result.Candidates[0].Name != "Alice" {
		t.Errorf("candidates must be ordered by confidence, got %+v", result.Candidates)
	}
}

func TestFacesHandler_Match_LowConfidence(t *testing.T) {
	s := newTestStore(t)
	handler := NewFacesHandler(s, newTestMatcher(s))

	registerFace(t, handler, RegisterRequest{Name: "Alice", Encoding: vectorWithSimilarity(0.1)})

	recorder := httptest.NewRecorder()
	handler.Match(recorder, jsonRequest("POST", "/api/v1/faces/match", MatchRequest{
		Encoding: []float64{1, 0},
	}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result matcher.Result
	parseJSONResponse(t, recorder, &result)

	if result.Tier != matcher.TierLow {
		t.Errorf("expected low tier, got %q", result.Tier)
	}
}

func TestFacesHandler_Match_EmptyStore(t *testing.T) {
	s := newTestStore(t)
	handler := NewFacesHandler(s, newTestMatcher(s))

	recorder := httptest.NewRecorder()
	handler.Match(recorder, jsonRequest("POST", "/api/v1/faces/match", MatchRequest{
		Encoding: []float64{1, 0},
	}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result matcher.Result
	parseJSONResponse(t, recorder, &result)
	if result.Tier != matcher.TierLow {
		t.Errorf("expected low tier for empty store, got %q", result.Tier)
	}
}

func TestFacesHandler_Match_MissingEncoding(t *testing.T) {
	s := newTestStore(t)
	handler := NewFacesHandler(s, newTestMatcher(s))

	recorder := httptest.NewRecorder()
	handler.Match(recorder, jsonRequest("POST", "/api/v1/faces/match", MatchRequest{}))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "encoding is required")
}
