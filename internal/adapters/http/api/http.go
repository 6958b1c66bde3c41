// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/attrition/internal/adapters/repository"
	"github.com/okian/attrition/internal/domain/analytics"
	"github.com/okian/attrition/internal/domain/snapshot"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AnalyticsDependencies
	DepartmentDependencies
	EmployeeDependencies
}

// AnalyticsDependencies computes metric bundles.
type AnalyticsDependencies interface {
	Refresh(ctx context.Context, filter snapshot.Filter) analytics.Bundle
	DepartmentFilter(department string) snapshot.Filter
}

// DepartmentDependencies lists filter options.
type DepartmentDependencies interface {
	Departments(ctx context.Context) ([]string, error)
}

// EmployeeDependencies reads and writes employee records.
type EmployeeDependencies interface {
	Employees(ctx context.Context, limit int) ([]repository.EmployeeRow, error)
	AddEmployee(ctx context.Context, key string, e repository.NewEmployee) (int64, bool, error)
	UpdateField(ctx context.Context, id int64, field string, value any) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	analyticsHandler   *AnalyticsHandler
	departmentsHandler *DepartmentsHandler
	employeesHandler   *EmployeesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		analyticsHandler:   NewAnalyticsHandler(deps),
		departmentsHandler: NewDepartmentsHandler(deps),
		employeesHandler:   NewEmployeesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/analytics", s.wrap(s.analyticsHandler.HandleGetAnalytics, "analytics"))
	mux.Handle("/departments", s.wrap(s.departmentsHandler.HandleGetDepartments, "departments"))
	mux.Handle("/employees", s.wrap(s.employeesHandler.HandleEmployees, "employees"))
	mux.Handle("/employees/", s.wrap(s.employeesHandler.HandlePatchEmployee, "employee"))
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeErr picks the status from the error kind.
func writeErr(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
