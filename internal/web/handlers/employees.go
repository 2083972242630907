package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/store"
)

// EmployeesHandler serves employee listing and editing.
type EmployeesHandler struct {
	store store.Store
}

// NewEmployeesHandler creates an employees handler.
func NewEmployeesHandler(s store.Store) *EmployeesHandler {
	return &EmployeesHandler{store: s}
}

// EmployeeResponse is one employee with the number of registered faces.
type EmployeeResponse struct {
	EmployeeID   int64  `json:"employee_id"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	EmployeeCode string `json:"employee_code"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	FaceCount    int    `json:"face_count"`
}

// UpdateEmployeeRequest overwrites all editable fields of an employee.
type UpdateEmployeeRequest struct {
	Name         string `json:"name"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	EmployeeCode string `json:"employee_code"`
}

func (h *EmployeesHandler) employeeResponse(r *http.Request, emp store.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		EmployeeID:   emp.EmployeeID,
		Name:         emp.Name,
		Department:   emp.Department,
		Position:     emp.Position,
		EmployeeCode: emp.EmployeeCode,
	}
	if emp.UpdatedAt != nil {
		resp.UpdatedAt = emp.UpdatedAt.UTC().Format(time.RFC3339)
	}
	// Count errors degrade to zero rather than failing the whole listing.
	if count, err := h.store.CountFaceEncodings(r.Context(), emp.EmployeeID); err == nil {
		resp.FaceCount = count
	}
	return resp
}

// List handles GET /employees. Query parameters name, department, position
// and employee_code are case-insensitive substring filters combined with AND.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.EmployeeFilter{
		Name:         query.Get("name"),
		Department:   query.Get("department"),
		Position:     query.Get("position"),
		EmployeeCode: query.Get("employee_code"),
	}

	employees, err := h.store.ListEmployees(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "failed to list employees")
		return
	}

	out := make([]EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		out = append(out, h.employeeResponse(r, emp))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get handles GET /employees/{employeeID}.
func (h *EmployeesHandler) Get(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	emp, err := h.store.GetEmployeeByID(r.Context(), employeeID)
	if err != nil {
		respondStoreError(w, err, "failed to look up employee")
		return
	}
	respondJSON(w, http.StatusOK, h.employeeResponse(r, *emp))
}

// Update handles PUT /employees/{employeeID}. All four fields are
// overwritten; a rename that collides with another employee is rejected.
func (h *EmployeesHandler) Update(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx := r.Context()
	if err := h.store.UpdateEmployee(ctx, employeeID, req.Name, req.Department, req.Position, req.EmployeeCode); err != nil {
		respondStoreError(w, err, "failed to update employee")
		return
	}

	emp, err := h.store.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		respondStoreError(w, err, "failed to look up employee")
		return
	}
	respondJSON(w, http.StatusOK, h.employeeResponse(r, *emp))
}
