package handlers

import (
	"encoding/json"
	"net/http"
)

// MatchRequest carries the probe vector to identify.
type MatchRequest struct {
	Encoding []float64 `json:"encoding"`
}

// Match handles POST /faces/match: scan the probe against every stored
// encoding and return the tiered result. A high-confidence match carries the
// single best candidate; a medium match carries up to three candidates for a
// human to confirm.
func (h *FacesHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Encoding) == 0 {
		respondError(w, http.StatusBadRequest, "encoding is required")
		return
	}

	result, err := h.matcher.Match(r.Context(), req.Encoding)
	if err != nil {
		respondStoreError(w, err, "failed to match face")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
