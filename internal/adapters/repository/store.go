// Package repository defines the employee record store and its SQLite
// implementation.
package repository

import (
	"context"

	"github.com/okian/attrition/internal/domain/snapshot"
)

// NewEmployee is the input for creating an employee record. Department and
// JobRole are names; the store resolves them to ids. Zero-valued optional
// fields are stored as NULL.
type NewEmployee struct {
	Department    string  `json:"department"`
	JobRole       string  `json:"job_role"`
	MonthlyIncome float64 `json:"monthly_income"`
	OverTime      string  `json:"overtime"`

	Age                     int    `json:"age,omitempty"`
	Gender                  string `json:"gender,omitempty"`
	MaritalStatus           string `json:"marital_status,omitempty"`
	BusinessTravel          string `json:"business_travel,omitempty"`
	DailyRate               int    `json:"daily_rate,omitempty"`
	TotalWorkingYears       int    `json:"total_working_years,omitempty"`
	JobSatisfaction         int    `json:"job_satisfaction,omitempty"`
	EnvironmentSatisfaction int    `json:"environment_satisfaction,omitempty"`
	Attrition               string `json:"attrition,omitempty"`
}

// EmployeeRow is one line of the employee table.
type EmployeeRow struct {
	ID            int64    `json:"employee_id"`
	Age           *int64   `json:"age"`
	Gender        *string  `json:"gender"`
	MaritalStatus *string  `json:"marital_status"`
	Department    *string  `json:"department"`
	JobRole       *string  `json:"job_role"`
	MonthlyIncome *float64 `json:"monthly_income"`
	OverTime      *string  `json:"overtime"`
	Attrition     *string  `json:"attrition"`
}

// Store provides read and write access to employee records.
type Store interface {
	// LoadSnapshot reads every employee, joined with department, job and
	// education names, in one consistent read.
	LoadSnapshot(ctx context.Context) (*snapshot.Snapshot, error)

	// InsertRecord creates an employee and returns its id. The department must
	// exist (ErrDepartmentNotFound); an unknown job role is created at level 1.
	InsertRecord(ctx context.Context, e NewEmployee) (int64, error)

	// UpdateField sets one column of an employee. Returns ErrUnknownField for
	// columns that cannot be updated and ErrNotFound for unknown ids.
	UpdateField(ctx context.Context, id int64, field string, value any) error

	// ListEmployees returns up to limit employees ordered by id.
	ListEmployees(ctx context.Context, limit int) ([]EmployeeRow, error)

	// Departments returns the department names ordered by id.
	Departments(ctx context.Context) ([]string, error)

	// Count returns the number of employees.
	Count(ctx context.Context) (int, error)

	Close() error
}
