package analytics

import (
	"github.com/okian/attrition/internal/domain/snapshot"
)

// DefaultSatisfactionFields are averaged into the headline satisfaction score.
var DefaultSatisfactionFields = []string{"JobSatisfaction", "EnvironmentSatisfaction"}

// Overview holds the headline statistics shown above the charts.
type Overview struct {
	TotalEmployees      int             `json:"total_employees"`
	AttritionRate       Result[float64] `json:"attrition_rate"`
	AverageIncome       Result[float64] `json:"average_income"`
	AverageSatisfaction Result[float64] `json:"average_satisfaction"`
}

// ComputeOverview summarizes s. A zero-row snapshot reports zeros for every
// statistic whose columns exist.
func ComputeOverview(s *snapshot.Snapshot, incomeField string, satisfaction []string, outcome Outcome) Overview {
	return Overview{
		TotalEmployees:      s.Len(),
		AttritionRate:       attritionRate(s, outcome),
		AverageIncome:       columnMean(s, incomeField),
		AverageSatisfaction: meanOfMeans(s, satisfaction),
	}
}

func attritionRate(s *snapshot.Snapshot, outcome Outcome) Result[float64] {
	if err := requireColumns(s, outcome.Field); err != nil {
		return Unavailable[float64](err)
	}
	positive := 0
	s.Each(func(_ int, r snapshot.Record) bool {
		if outcome.IsPositive(r[outcome.Field]) {
			positive++
		}
		return true
	})
	return Available(rate(positive, s.Len()))
}

func columnMean(s *snapshot.Snapshot, field string) Result[float64] {
	if err := requireColumns(s, field); err != nil {
		return Unavailable[float64](err)
	}
	mean, _ := meanOf(s, field)
	return Available(mean)
}

// meanOfMeans averages the per-column means, skipping columns with no numeric
// values.
func meanOfMeans(s *snapshot.Snapshot, fields []string) Result[float64] {
	if err := requireColumns(s, fields...); err != nil {
		return Unavailable[float64](err)
	}
	var total float64
	var used int
	for _, f := range fields {
		if m, ok := meanOf(s, f); ok {
			total += m
			used++
		}
	}
	if used == 0 {
		return Available(0.0)
	}
	return Available(total / float64(used))
}

// meanOf returns the mean of the numeric values of field; ok is false when
// there are none.
func meanOf(s *snapshot.Snapshot, field string) (float64, bool) {
	var sum float64
	var n int
	s.Each(func(_ int, r snapshot.Record) bool {
		if v, ok := snapshot.Float(r[field]); ok {
			sum += v
			n++
		}
		return true
	})
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
