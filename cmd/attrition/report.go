package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	service "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/domain/snapshot"
	"github.com/spf13/cobra"
)

var errFilterFlags = errors.New("--department cannot be combined with --dimension/--value")

func newReportCmd(c *cli) *cobra.Command {
	var department, dimension, value string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the metric bundle and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if department != "" && (dimension != "" || value != "") {
				return errFilterFlags
			}
			if (dimension == "") != (value == "") {
				return errors.New("--dimension and --value must be set together")
			}
			return c.withService(cmd.Context(), func(svc *service.Service) error {
				filter := svc.DepartmentFilter(department)
				if dimension != "" {
					filter = snapshot.Eq(dimension, value)
				}
				return writeJSON(cmd.OutOrStdout(), svc.Refresh(cmd.Context(), filter))
			})
		},
	}
	cmd.Flags().StringVar(&department, "department", "", "restrict filtered metrics to one department")
	cmd.Flags().StringVar(&dimension, "dimension", "", "column to filter on")
	cmd.Flags().StringVar(&value, "value", "", "value the dimension must equal")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
