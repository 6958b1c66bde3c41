package analytics

import (
	"math"
	"sort"

	"github.com/okian/attrition/internal/domain/snapshot"
)

// Quartile positions used by the box summary.
const (
	quartileLow  = 0.25
	quartileMid  = 0.5
	quartileHigh = 0.75
)

// Distribution holds the values of one numeric field split by outcome.
type Distribution struct {
	Field string    `json:"field"`
	Yes   Partition `json:"yes"`
	No    Partition `json:"no"`
	// Unclassified counts rows whose outcome is neither marker.
	Unclassified int `json:"unclassified"`
	// NonNumeric counts rows skipped because the field was not numeric.
	NonNumeric int `json:"non_numeric"`
}

// Partition is the ordered sequence of values for one outcome plus a box
// summary. Summary is nil for an empty partition.
type Partition struct {
	Values  []float64 `json:"values"`
	Summary *Summary  `json:"summary,omitempty"`
}

// Summary is a five-number box summary plus count and mean. Quartiles use
// linear interpolation between closest ranks.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Summarize splits the numeric values of field by outcome, preserving row
// order within each partition.
func Summarize(s *snapshot.Snapshot, field string, outcome Outcome) Result[Distribution] {
	if err := requireColumns(s, field, outcome.Field); err != nil {
		return Unavailable[Distribution](err)
	}

	d := Distribution{
		Field: field,
		Yes:   Partition{Values: []float64{}},
		No:    Partition{Values: []float64{}},
	}
	s.Each(func(_ int, r snapshot.Record) bool {
		v, ok := snapshot.Float(r[field])
		if !ok {
			d.NonNumeric++
			return true
		}
		o := r[outcome.Field]
		switch {
		case outcome.IsPositive(o):
			d.Yes.Values = append(d.Yes.Values, v)
		case outcome.IsNegative(o):
			d.No.Values = append(d.No.Values, v)
		default:
			d.Unclassified++
		}
		return true
	})
	d.Yes.Summary = summarize(d.Yes.Values)
	d.No.Summary = summarize(d.No.Values)
	return Available(d)
}

func summarize(values []float64) *Summary {
	n := len(values)
	if n == 0 {
		return nil
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return &Summary{
		Count:  n,
		Min:    sorted[0],
		Q1:     quantile(sorted, quartileLow),
		Median: quantile(sorted, quartileMid),
		Q3:     quantile(sorted, quartileHigh),
		Max:    sorted[n-1],
		Mean:   sum / float64(n),
	}
}

// quantile expects sorted, non-empty input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
