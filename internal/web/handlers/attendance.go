package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// AttendanceHandler serves attendance registration, reporting and tag fixes.
type AttendanceHandler struct {
	store store.Store
}

// NewAttendanceHandler creates an attendance handler.
func NewAttendanceHandler(s store.Store) *AttendanceHandler {
	return &AttendanceHandler{store: s}
}

// AddAttendanceRequest registers a clock event for an employee. The server
// supplies the timestamp and derives the tag from its configured windows.
type AddAttendanceRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

// AttendanceResponse is one attendance record joined with its employee.
// Employee fields are empty when the employee row no longer exists.
type AttendanceResponse struct {
	RecordID     int64  `json:"record_id"`
	EmployeeID   int64  `json:"employee_id"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	EmployeeCode string `json:"employee_code"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Tag          string `json:"tag"`
}

// UpdateTagRequest corrects the tag of one attendance record.
type UpdateTagRequest struct {
	Tag string `json:"tag"`
}

// UpdateTagResponse reports the correction, including the value it replaced.
type UpdateTagResponse struct {
	RecordID int64  `json:"record_id"`
	OldTag   string `json:"old_tag"`
	NewTag   string `json:"new_tag"`
}

func attendanceResponse(rec store.AttendanceWithEmployee) AttendanceResponse {
	return AttendanceResponse{
		RecordID:     rec.RecordID,
		EmployeeID:   rec.EmployeeID,
		Name:         rec.Name,
		Department:   rec.Department,
		Position:     rec.Position,
		EmployeeCode: rec.EmployeeCode,
		Date:         rec.Date,
		Time:         rec.Time,
		Tag:          string(rec.Tag),
	}
}

// Add handles POST /attendance.
func (h *AttendanceHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.EmployeeID == 0 {
		respondError(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	rec, err := h.store.AddAttendance(r.Context(), req.EmployeeID)
	if err != nil {
		respondStoreError(w, err, "failed to add attendance record")
		return
	}
	respondJSON(w, http.StatusCreated, attendanceResponse(*rec))
}

// List handles GET /attendance. Query parameters: start_date, end_date
// (inclusive, "2006-01-02"), tag, and the employee filters name, department,
// position and employee_code. tag=none selects untagged records; omitting
// the parameter disables tag filtering entirely.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.AttendanceFilter{
		EmployeeFilter: store.EmployeeFilter{
			Name:         query.Get("name"),
			Department:   query.Get("department"),
			Position:     query.Get("position"),
			EmployeeCode: query.Get("employee_code"),
		},
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}

	if query.Has("tag") {
		raw := query.Get("tag")
		if !attendance.ValidTag(raw) {
			respondError(w, http.StatusBadRequest, "unknown tag: "+sanitizeForLog(raw))
			return
		}
		tag := string(attendance.NormalizeTag(raw))
		filter.Tag = &tag
	}

	records, err := h.store.ListAttendance(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "failed to list attendance records")
		return
	}

	out := make([]AttendanceResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, attendanceResponse(rec))
	}
	respondJSON(w, http.StatusOK, out)
}

// UpdateTag handles PUT /attendance/{recordID}. The record is addressed by
// its id, so the fix lands on the same row no matter how listings are sorted.
func (h *AttendanceHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	recordID, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var req UpdateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if !attendance.ValidTag(req.Tag) {
		respondError(w, http.StatusBadRequest, "unknown tag: "+sanitizeForLog(req.Tag))
		return
	}
	newTag := string(attendance.NormalizeTag(req.Tag))

	oldTag, err := h.store.UpdateAttendanceTag(r.Context(), recordID, newTag)
	if err != nil {
		respondStoreError(w, err, "failed to update attendance tag")
		return
	}
	respondJSON(w, http.StatusOK, UpdateTagResponse{
		RecordID: recordID,
		OldTag:   oldTag,
		NewTag:   newTag,
	})
}
