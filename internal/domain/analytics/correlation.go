package analytics

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/okian/attrition/internal/domain/snapshot"
)

const (
	labelPrecision = 100 // two decimals
	minPairs       = 2
)

// DefaultCorrelationFeatures are the numeric fields correlated with attrition.
var DefaultCorrelationFeatures = []string{
	"Age",
	"MonthlyIncome",
	"TotalWorkingYears",
	"JobLevel",
	"JobSatisfaction",
	"EnvironmentSatisfaction",
	"DailyRate",
}

// CorrelationMatrix is a symmetric Pearson correlation matrix. Cells are in
// [-1, 1]; a cell involving a zero-variance feature, or fewer than two
// complete pairs, is NaN.
type CorrelationMatrix struct {
	Features []string
	Values   [][]float64
	// Pairs[i][j] is the number of rows where both features were numeric.
	Pairs [][]int
}

// Size returns the number of features.
func (m CorrelationMatrix) Size() int { return len(m.Features) }

// At returns the coefficient for features i and j.
func (m CorrelationMatrix) At(i, j int) float64 { return m.Values[i][j] }

// Lookup returns the coefficient for two named features.
func (m CorrelationMatrix) Lookup(a, b string) (float64, bool) {
	i, j := m.indexOf(a), m.indexOf(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m CorrelationMatrix) indexOf(name string) int {
	for i, f := range m.Features {
		if f == name {
			return i
		}
	}
	return -1
}

// Label formats cell (i, j) rounded to two decimals; NaN cells are empty.
func (m CorrelationMatrix) Label(i, j int) string {
	v := m.Values[i][j]
	if math.IsNaN(v) {
		return ""
	}
	r := math.Round(v*labelPrecision) / labelPrecision
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', 2, 64)
}

// Labels returns Label for every cell.
func (m CorrelationMatrix) Labels() [][]string {
	out := make([][]string, len(m.Values))
	for i := range m.Values {
		out[i] = make([]string, len(m.Values[i]))
		for j := range m.Values[i] {
			out[i][j] = m.Label(i, j)
		}
	}
	return out
}

type matrixJSON struct {
	Features []string     `json:"features"`
	Values   [][]*float64 `json:"values"`
	Labels   [][]string   `json:"labels"`
	Pairs    [][]int      `json:"pairs"`
}

// MarshalJSON encodes NaN cells as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) {
				continue
			}
			v := row[j]
			vals[i][j] = &v
		}
	}
	return json.Marshal(matrixJSON{
		Features: m.Features,
		Values:   vals,
		Labels:   m.Labels(),
		Pairs:    m.Pairs,
	})
}

// column is one feature's values with a validity mask.
type column struct {
	values []float64
	valid  []bool
}

// ComputeMatrix correlates features plus the binarized outcome, appended last
// as AttritionBinary. Every feature and the outcome column must exist.
//
// Rows where either feature of a pair is missing or non-numeric are left out
// of that pair only. Callers pass the unfiltered snapshot: the matrix
// describes the whole company, not a filtered slice.
func ComputeMatrix(s *snapshot.Snapshot, features []string, outcome Outcome) Result[CorrelationMatrix] {
	required := append(append([]string{}, features...), outcome.Field)
	if err := requireColumns(s, required...); err != nil {
		return Unavailable[CorrelationMatrix](err)
	}

	names := append(append([]string{}, features...), attritionBinaryFeature)
	n := s.Len()
	cols := make([]column, len(names))
	for f := range cols {
		cols[f] = column{values: make([]float64, n), valid: make([]bool, n)}
	}
	s.Each(func(i int, r snapshot.Record) bool {
		for f, name := range features {
			cols[f].values[i], cols[f].valid[i] = snapshot.Float(r[name])
		}
		last := len(names) - 1
		cols[last].values[i] = outcome.Binary(r[outcome.Field])
		cols[last].valid[i] = true
		return true
	})

	k := len(names)
	m := CorrelationMatrix{
		Features: names,
		Values:   make([][]float64, k),
		Pairs:    make([][]int, k),
	}
	for i := 0; i < k; i++ {
		m.Values[i] = make([]float64, k)
		m.Pairs[i] = make([]int, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			r, pairs := pearson(cols[i], cols[j], i == j)
			m.Values[i][j], m.Values[j][i] = r, r
			m.Pairs[i][j], m.Pairs[j][i] = pairs, pairs
		}
	}
	return Available(m)
}

// pearson computes the coefficient over rows where both columns are valid.
// A self pair reports exactly 1 when the column varies.
func pearson(x, y column, self bool) (float64, int) {
	var n int
	var sumX, sumY, firstX, firstY float64
	constX, constY := true, true
	for i := range x.values {
		if !x.valid[i] || !y.valid[i] {
			continue
		}
		if n == 0 {
			firstX, firstY = x.values[i], y.values[i]
		}
		constX = constX && x.values[i] == firstX
		constY = constY && y.values[i] == firstY
		n++
		sumX += x.values[i]
		sumY += y.values[i]
	}
	if n < minPairs {
		return math.NaN(), n
	}
	// Rounding in the mean can leave a tiny spread for constant input.
	if constX || constY {
		return math.NaN(), n
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, syy, sxy float64
	for i := range x.values {
		if !x.valid[i] || !y.valid[i] {
			continue
		}
		dx := x.values[i] - meanX
		dy := y.values[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN(), n
	}
	if self {
		return 1, n
	}
	return clamp(sxy/math.Sqrt(sxx*syy), -1, 1), n
}
