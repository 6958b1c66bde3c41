package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/attrition/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8050")
				convey.So(cfg.PositiveMarker, convey.ShouldEqual, "Yes")
				convey.So(cfg.EmployeeListLimit, convey.ShouldEqual, 50)
				convey.So(cfg.CorrelationFeatures, convey.ShouldHaveLength, 7)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ATTRITION_ADDR", ":8080")
			_ = os.Setenv("ATTRITION_DATABASE_PATH", "/tmp/hr.db")
			_ = os.Setenv("ATTRITION_POSITIVE_MARKER", "Left")
			_ = os.Setenv("ATTRITION_EMPLOYEE_LIST_LIMIT", "25")
			_ = os.Setenv("ATTRITION_GROUP_DIMENSIONS", "JobRole, Gender")
			_ = os.Setenv("ATTRITION_METRICS_REFRESH_INTERVAL", "30s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "/tmp/hr.db")
				convey.So(cfg.PositiveMarker, convey.ShouldEqual, "Left")
				convey.So(cfg.EmployeeListLimit, convey.ShouldEqual, 25)
				convey.So(cfg.GroupDimensions, convey.ShouldResemble, []string{"JobRole", "Gender"})
				convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# service
addr: ":9090"
log_format: json
attrition_field: Left
positive_marker: "1"
negative_marker: "0"
group_dimensions:
  - OverTime
correlation_features: [Age, MonthlyIncome]
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.AttritionField, convey.ShouldEqual, "Left")
				convey.So(cfg.PositiveMarker, convey.ShouldEqual, "1")
				convey.So(cfg.GroupDimensions, convey.ShouldResemble, []string{"OverTime"})
				convey.So(cfg.CorrelationFeatures, convey.ShouldResemble, []string{"Age", "MonthlyIncome"})
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "data/employee_attrition.db") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
income_field: DailyRate
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ATTRITION_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.LoadFrom(ctx, tmpFile)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.IncomeField, convey.ShouldEqual, "DailyRate")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.LoadFrom(ctx, tmpFile)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			cfg, err := config.LoadFrom(ctx, "/non/existent/file.yaml")

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ATTRITION_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When both markers are equal", func() {
			_ = os.Setenv("ATTRITION_NEGATIVE_MARKER", "Yes")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ATTRITION_EMPLOYEE_LIST_LIMIT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ATTRITION_CONFIG",
		"ATTRITION_ADDR",
		"ATTRITION_DATABASE_PATH",
		"ATTRITION_POSITIVE_MARKER",
		"ATTRITION_NEGATIVE_MARKER",
		"ATTRITION_EMPLOYEE_LIST_LIMIT",
		"ATTRITION_GROUP_DIMENSIONS",
		"ATTRITION_METRICS_REFRESH_INTERVAL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "attrition-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
