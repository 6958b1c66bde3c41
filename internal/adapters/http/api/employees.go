package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/attrition/internal/adapters/repository"
)

// Request limits.
const (
	maxBodyBytes         = 1 << 20
	idempotencyKeyHeader = "Idempotency-Key"
)

// EmployeesHandler handles the employee table and record writes.
type EmployeesHandler struct {
	deps EmployeeDependencies
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps EmployeeDependencies) *EmployeesHandler {
	return &EmployeesHandler{deps: deps}
}

type createResponse struct {
	ID        int64 `json:"id"`
	Duplicate bool  `json:"duplicate"`
}

// updateRequest is the body of PATCH /employees/{id}.
type updateRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// HandleEmployees handles GET and POST /employees.
func (h *EmployeesHandler) HandleEmployees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *EmployeesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_employees"
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	rows, err := h.deps.Employees(r.Context(), limit)
	if err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	if rows == nil {
		rows = []repository.EmployeeRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *EmployeesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_employee"
	var req repository.NewEmployee
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	id, replayed, err := h.deps.AddEmployee(r.Context(), key, req)
	if err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	if replayed {
		writeJSON(w, http.StatusOK, createResponse{ID: id, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

// HandlePatchEmployee handles PATCH /employees/{id} requests.
func (h *EmployeesHandler) HandlePatchEmployee(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_employee"
	if r.Method != http.MethodPatch {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/employees/")
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var req updateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Field) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing field")))
		return
	}

	if err := h.deps.UpdateField(r.Context(), id, req.Field, req.Value); err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
