package analytics

import (
	"time"

	"github.com/okian/attrition/internal/domain/snapshot"
)

// Default facade configuration.
const (
	DefaultIncomeField      = "MonthlyIncome"
	DefaultOverallDimension = "JobRole"
	DefaultFilterDimension  = "DepartmentName"
)

// DefaultGroupDimensions are the categorical dimensions reported per refresh.
var DefaultGroupDimensions = []string{"JobRole", "OverTime", "MaritalStatus", "BusinessTravel"}

// Metric names used as keys in Bundle.Unavailable.
const (
	MetricIncome              = "income_distribution"
	MetricCorrelation         = "correlation"
	MetricOverallRates        = "overall_rates"
	MetricOverallIncome       = "overall_income_distribution"
	MetricAttritionRate       = "attrition_rate"
	MetricAverageIncome       = "average_income"
	MetricAverageSatisfaction = "average_satisfaction"
	metricRatesPrefix         = "rates:"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithOutcome sets the attrition column and its markers.
func WithOutcome(o Outcome) Option {
	return func(e *Engine) {
		if o.Field != "" && o.Positive != "" {
			e.outcome = o
		}
	}
}

// WithIncomeField sets the numeric field used for income distributions.
func WithIncomeField(field string) Option {
	return func(e *Engine) {
		if field != "" {
			e.incomeField = field
		}
	}
}

// WithGroupDimensions sets the dimensions reported as filtered group rates.
func WithGroupDimensions(dims []string) Option {
	return func(e *Engine) {
		if len(dims) > 0 {
			e.groupDimensions = append([]string{}, dims...)
		}
	}
}

// WithOverallDimension sets the dimension of the company-wide rate chart.
func WithOverallDimension(dim string) Option {
	return func(e *Engine) {
		if dim != "" {
			e.overallDimension = dim
		}
	}
}

// WithCorrelationFeatures sets the numeric features of the correlation matrix.
func WithCorrelationFeatures(features []string) Option {
	return func(e *Engine) {
		if len(features) > 0 {
			e.correlationFeatures = append([]string{}, features...)
		}
	}
}

// WithSatisfactionFields sets the fields averaged into the satisfaction score.
func WithSatisfactionFields(fields []string) Option {
	return func(e *Engine) {
		if len(fields) > 0 {
			e.satisfactionFields = append([]string{}, fields...)
		}
	}
}

// Engine computes a full metrics bundle per refresh. It holds configuration
// only and is safe for concurrent use.
type Engine struct {
	outcome             Outcome
	incomeField         string
	groupDimensions     []string
	overallDimension    string
	correlationFeatures []string
	satisfactionFields  []string
}

// NewEngine constructs an Engine with the default dashboard configuration.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		outcome:             DefaultOutcome(),
		incomeField:         DefaultIncomeField,
		groupDimensions:     append([]string{}, DefaultGroupDimensions...),
		overallDimension:    DefaultOverallDimension,
		correlationFeatures: append([]string{}, DefaultCorrelationFeatures...),
		satisfactionFields:  append([]string{}, DefaultSatisfactionFields...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome returns the configured attrition outcome.
func (e *Engine) Outcome() Outcome { return e.outcome }

// GroupDimensions returns a copy of the configured group dimensions.
func (e *Engine) GroupDimensions() []string {
	return append([]string{}, e.groupDimensions...)
}

// DimensionRates is the group-rate result for one dimension.
type DimensionRates struct {
	Dimension string              `json:"dimension"`
	Rates     Result[[]GroupRate] `json:"rates"`
}

// Bundle is everything one refresh produces. Filtered metrics use the
// filtered view; Overview, Correlation, OverallRates and OverallIncome always
// use the full snapshot. All fields derive from the same snapshot.
type Bundle struct {
	SnapshotID    string          `json:"snapshot_id"`
	TakenAt       time.Time       `json:"taken_at"`
	Filter        snapshot.Filter `json:"filter"`
	FilterApplied bool            `json:"filter_applied"`
	TotalRows     int             `json:"total_rows"`
	FilteredRows  int             `json:"filtered_rows"`

	Overview    Overview                  `json:"overview"`
	GroupRates  []DimensionRates          `json:"group_rates"`
	Income      Result[Distribution]      `json:"income"`
	Correlation Result[CorrelationMatrix] `json:"correlation"`

	OverallDimension string               `json:"overall_dimension"`
	OverallRates     Result[[]GroupRate]  `json:"overall_rates"`
	OverallIncome    Result[Distribution] `json:"overall_income"`
}

// Rates returns the filtered group rates for dimension.
func (b Bundle) Rates(dimension string) (Result[[]GroupRate], bool) {
	for _, d := range b.GroupRates {
		if d.Dimension == dimension {
			return d.Rates, true
		}
	}
	return Result[[]GroupRate]{}, false
}

// Unavailable maps every unavailable metric of the bundle to its reason.
func (b Bundle) Unavailable() map[string]string {
	out := make(map[string]string)
	add := func(name string, ok bool, reason string) {
		if !ok {
			out[name] = reason
		}
	}
	for _, d := range b.GroupRates {
		add(metricRatesPrefix+d.Dimension, d.Rates.OK(), d.Rates.Reason())
	}
	add(MetricIncome, b.Income.OK(), b.Income.Reason())
	add(MetricCorrelation, b.Correlation.OK(), b.Correlation.Reason())
	add(MetricOverallRates, b.OverallRates.OK(), b.OverallRates.Reason())
	add(MetricOverallIncome, b.OverallIncome.OK(), b.OverallIncome.Reason())
	add(MetricAttritionRate, b.Overview.AttritionRate.OK(), b.Overview.AttritionRate.Reason())
	add(MetricAverageIncome, b.Overview.AverageIncome.OK(), b.Overview.AverageIncome.Reason())
	add(MetricAverageSatisfaction, b.Overview.AverageSatisfaction.OK(), b.Overview.AverageSatisfaction.Reason())
	return out
}

// Refresh computes the bundle for s narrowed by filter. A nil snapshot is
// treated as empty. Each metric is computed independently, so a missing
// column only marks the metrics that need it as unavailable.
func (e *Engine) Refresh(s *snapshot.Snapshot, filter snapshot.Filter) Bundle {
	if s == nil {
		s = snapshot.Empty()
	}
	filtered := snapshot.Apply(s, filter)

	b := Bundle{
		SnapshotID:       s.ID(),
		TakenAt:          s.TakenAt(),
		Filter:           filter,
		FilterApplied:    filtered != s,
		TotalRows:        s.Len(),
		FilteredRows:     filtered.Len(),
		Overview:         ComputeOverview(s, e.incomeField, e.satisfactionFields, e.outcome),
		GroupRates:       make([]DimensionRates, 0, len(e.groupDimensions)),
		OverallDimension: e.overallDimension,
	}
	for _, dim := range e.groupDimensions {
		b.GroupRates = append(b.GroupRates, DimensionRates{
			Dimension: dim,
			Rates:     ComputeRate(filtered, dim, e.outcome),
		})
	}
	b.Income = Summarize(filtered, e.incomeField, e.outcome)
	b.Correlation = ComputeMatrix(s, e.correlationFeatures, e.outcome)
	b.OverallRates = ComputeRate(s, e.overallDimension, e.outcome)
	b.OverallIncome = Summarize(s, e.incomeField, e.outcome)
	return b
}
