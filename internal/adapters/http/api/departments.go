package api

import "net/http"

// DepartmentsHandler lists the departments offered as filters.
type DepartmentsHandler struct {
	deps DepartmentDependencies
}

// NewDepartmentsHandler creates a new departments handler.
func NewDepartmentsHandler(deps DepartmentDependencies) *DepartmentsHandler {
	return &DepartmentsHandler{deps: deps}
}

// HandleGetDepartments handles GET /departments requests.
func (h *DepartmentsHandler) HandleGetDepartments(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_departments"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	deps, err := h.deps.Departments(r.Context())
	if err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, deps)
}
