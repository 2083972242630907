package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/matcher"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// FacesHandler serves face registration, listing, deletion and matching.
type FacesHandler struct {
	store   store.Store
	matcher *matcher.Matcher
}

// NewFacesHandler creates a faces handler.
func NewFacesHandler(s store.Store, m *matcher.Matcher) *FacesHandler {
	return &FacesHandler{store: s, matcher: m}
}

// RegisterRequest is a face registration request. The employee is created on
// first sight; subsequent registrations under the same name attach another
// encoding and fill in any employee fields that were previously empty.
type RegisterRequest struct {
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Position     string    `json:"position"`
	EmployeeCode string    `json:"employee_code"`
	ImagePath    string    `json:"image_path"`
	Encoding     []float64 `json:"encoding"`
}

// RegisterResponse reports the ids assigned during registration.
type RegisterResponse struct {
	EmployeeID int64 `json:"employee_id"`
	EncodingID int64 `json:"encoding_id"`
}

// FaceResponse is one stored encoding with its employee fields. Employee
// fields are empty for orphaned encodings.
type FaceResponse struct {
	EncodingID   int64  `json:"encoding_id"`
	EmployeeID   int64  `json:"employee_id"`
	ImagePath    string `json:"image_path"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	EmployeeCode string `json:"employee_code"`
}

// Register handles POST /faces: upsert the employee by name, then store the
// new encoding under it.
func (h *FacesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Encoding) == 0 {
		respondError(w, http.StatusBadRequest, "encoding is required")
		return
	}

	ctx := r.Context()
	employeeID, err := h.store.UpsertEmployeeByName(ctx, req.Name, req.Department, req.Position, req.EmployeeCode)
	if err != nil {
		respondStoreError(w, err, "failed to register employee")
		return
	}

	encodingID, err := h.store.AddFaceEncoding(ctx, employeeID, req.ImagePath, req.Encoding)
	if err != nil {
		respondStoreError(w, err, "failed to store face encoding")
		return
	}

	log.Printf("registered face %d for employee %d (%s)", encodingID, employeeID, sanitizeForLog(req.Name))
	respondJSON(w, http.StatusCreated, RegisterResponse{
		EmployeeID: employeeID,
		EncodingID: encodingID,
	})
}

// List handles GET /faces: every stored encoding joined with its employee.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	faces, err := h.store.ListAllFaceEncodings(r.Context())
	if err != nil {
		respondStoreError(w, err, "failed to list face encodings")
		return
	}

	out := make([]FaceResponse, 0, len(faces))
	for _, f := range faces {
		out = append(out, FaceResponse{
			EncodingID:   f.EncodingID,
			EmployeeID:   f.EmployeeID,
			ImagePath:    f.ImagePath,
			Name:         f.Name,
			Department:   f.Department,
			Position:     f.Position,
			EmployeeCode: f.EmployeeCode,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /faces/{encodingID}. Removing an encoding never
// touches the employee row.
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	encodingID, err := strconv.ParseInt(chi.URLParam(r, "encodingID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid encoding id")
		return
	}

	if err := h.store.DeleteFaceEncoding(r.Context(), encodingID); err != nil {
		respondStoreError(w, err, "failed to delete face encoding")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ListForEmployee handles GET /employees/{employeeID}/faces.
func (h *FacesHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetEmployeeByID(ctx, employeeID); err != nil {
		respondStoreError(w, err, "failed to look up employee")
		return
	}

	faces, err := h.store.ListFaceEncodings(ctx, employeeID)
	if err != nil {
		respondStoreError(w, err, "failed to list face encodings")
		return
	}

	out := make([]FaceResponse, 0, len(faces))
	for _, f := range faces {
		out = append(out, FaceResponse{
			EncodingID: f.EncodingID,
			EmployeeID: f.EmployeeID,
			ImagePath:  f.ImagePath,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
