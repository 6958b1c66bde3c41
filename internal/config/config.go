// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and ATTRITION_* env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/attrition/internal/domain/analytics"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8050".
	Addr string `koanf:"addr"`

	// DatabasePath locates the SQLite employee database.
	DatabasePath string `koanf:"database_path"`

	// AttritionField names the outcome column and its markers.
	AttritionField string `koanf:"attrition_field"`
	PositiveMarker string `koanf:"positive_marker"`
	NegativeMarker string `koanf:"negative_marker"`

	// IncomeField is the column summarised by the income distribution.
	IncomeField string `koanf:"income_field"`

	// FilterDimension is the column the department selector filters on.
	FilterDimension string `koanf:"filter_dimension"`

	// OverallDimension is grouped on the unfiltered snapshot.
	OverallDimension string `koanf:"overall_dimension"`

	// GroupDimensions are grouped on the filtered snapshot.
	GroupDimensions []string `koanf:"group_dimensions"`

	// CorrelationFeatures are the numeric columns of the correlation matrix.
	CorrelationFeatures []string `koanf:"correlation_features"`

	// EmployeeListLimit caps GET /employees.
	EmployeeListLimit int `koanf:"employee_list_limit"`

	// IdempotencyCacheSize bounds the remembered Idempotency-Key values.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`

	// MetricsRefreshInterval is how often serve samples runtime gauges, e.g. "10s".
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8050",
		DatabasePath:         "data/employee_attrition.db",
		AttritionField:       analytics.DefaultAttritionField,
		PositiveMarker:       analytics.DefaultPositiveMarker,
		NegativeMarker:       analytics.DefaultNegativeMarker,
		IncomeField:          analytics.DefaultIncomeField,
		FilterDimension:      analytics.DefaultFilterDimension,
		OverallDimension:     analytics.DefaultOverallDimension,
		GroupDimensions:      append([]string{}, analytics.DefaultGroupDimensions...),
		CorrelationFeatures:  append([]string{}, analytics.DefaultCorrelationFeatures...),
		EmployeeListLimit:    50,
		IdempotencyCacheSize: 10_000,

		MetricsRefreshInterval: 10 * time.Second,
	}
}

// Outcome returns the configured attrition outcome.
func (c *Config) Outcome() analytics.Outcome {
	return analytics.Outcome{
		Field:    c.AttritionField,
		Positive: c.PositiveMarker,
		Negative: c.NegativeMarker,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DatabasePath) == "":
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.AttritionField) == "":
		return fmt.Errorf("%w: attrition_field must not be empty", ErrInvalidConfig)
	case c.PositiveMarker == "":
		return fmt.Errorf("%w: positive_marker must not be empty", ErrInvalidConfig)
	case c.PositiveMarker == c.NegativeMarker:
		return fmt.Errorf("%w: positive_marker and negative_marker must differ", ErrInvalidConfig)
	case c.EmployeeListLimit < 1:
		return fmt.Errorf("%w: employee_list_limit must be positive", ErrInvalidConfig)
	case c.IdempotencyCacheSize < 1:
		return fmt.Errorf("%w: idempotency_cache_size must be positive", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
