package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/attrition/internal/adapters/repository"
	service "github.com/okian/attrition/internal/app"
	"github.com/spf13/cobra"
)

func newEmployeesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "List, add and update employee records",
	}
	cmd.AddCommand(
		newEmployeesListCmd(c),
		newEmployeesAddCmd(c),
		newEmployeesSetCmd(c),
	)
	return cmd
}

func newEmployeesListCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the employee table as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *service.Service) error {
				rows, err := svc.Employees(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if rows == nil {
					rows = []repository.EmployeeRow{}
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 uses the configured cap)")
	return cmd
}

func newEmployeesAddCmd(c *cli) *cobra.Command {
	var (
		e   repository.NewEmployee
		key string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert an employee record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *service.Service) error {
				id, _, err := svc.AddEmployee(cmd.Context(), key, e)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&e.Department, "department", "", "department name (required)")
	f.StringVar(&e.JobRole, "job-role", "", "job role (required)")
	f.Float64Var(&e.MonthlyIncome, "income", 0, "monthly income (required)")
	f.StringVar(&e.OverTime, "overtime", "", "Yes or No (required)")
	f.IntVar(&e.Age, "age", 0, "age")
	f.StringVar(&e.Gender, "gender", "", "gender")
	f.StringVar(&e.MaritalStatus, "marital-status", "", "marital status")
	f.StringVar(&e.BusinessTravel, "business-travel", "", "business travel frequency")
	f.IntVar(&e.DailyRate, "daily-rate", 0, "daily rate")
	f.IntVar(&e.TotalWorkingYears, "total-working-years", 0, "total working years")
	f.IntVar(&e.JobSatisfaction, "job-satisfaction", 0, "job satisfaction (1-4)")
	f.IntVar(&e.EnvironmentSatisfaction, "environment-satisfaction", 0, "environment satisfaction (1-4)")
	f.StringVar(&e.Attrition, "attrition", "", "attrition marker")
	f.StringVar(&key, "idempotency-key", "", "makes repeated adds within one process return the first id")
	for _, name := range []string{"department", "job-role", "income", "overtime"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEmployeesSetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <field> <value>",
		Short: "Update one column of one employee",
		Long: "Update one column of one employee. Numeric values are stored as numbers; " +
			"the literal null clears the column.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid employee id %q", args[0])
			}
			return c.withService(cmd.Context(), func(svc *service.Service) error {
				return svc.UpdateField(cmd.Context(), id, args[1], parseValue(args[2]))
			})
		},
	}
}

// parseValue maps a command line argument to a column value.
func parseValue(s string) any {
	if strings.EqualFold(s, "null") {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return json.Number(s)
	}
	return s
}
