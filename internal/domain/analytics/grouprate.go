package analytics

import (
	"github.com/okian/attrition/internal/domain/snapshot"
)

const percent = 100

// GroupRate is the attrition rate within one value of a grouping dimension.
type GroupRate struct {
	Group       any     `json:"group"`
	RatePercent float64 `json:"rate_percent"`
	Size        int     `json:"size"`
	Positive    int     `json:"positive"`
}

type groupAcc struct {
	value    any
	size     int
	positive int
}

// ComputeRate partitions s by groupDimension and returns, per distinct value,
// the percentage of rows whose outcome is positive.
//
// Groups appear in order of first appearance in s. Rows with no value for the
// dimension form their own group with a nil Group, so group sizes always sum
// to s.Len(). A zero-row snapshot yields an empty, available result.
func ComputeRate(s *snapshot.Snapshot, groupDimension string, outcome Outcome) Result[[]GroupRate] {
	if err := requireColumns(s, groupDimension, outcome.Field); err != nil {
		return Unavailable[[]GroupRate](err)
	}

	index := make(map[any]int)
	accs := make([]*groupAcc, 0)
	s.Each(func(_ int, r snapshot.Record) bool {
		v := r[groupDimension]
		k := snapshot.Key(v)
		pos, ok := index[k]
		if !ok {
			pos = len(accs)
			index[k] = pos
			accs = append(accs, &groupAcc{value: v})
		}
		a := accs[pos]
		a.size++
		if outcome.IsPositive(r[outcome.Field]) {
			a.positive++
		}
		return true
	})

	out := make([]GroupRate, len(accs))
	for i, a := range accs {
		out[i] = GroupRate{
			Group:       a.value,
			RatePercent: rate(a.positive, a.size),
			Size:        a.size,
			Positive:    a.positive,
		}
	}
	return Available(out)
}

// rate returns 100*positive/size, clamped to [0, 100]. size is never zero for
// a group, but an empty population reports 0.
func rate(positive, size int) float64 {
	if size == 0 {
		return 0
	}
	r := percent * float64(positive) / float64(size)
	return clamp(r, 0, percent)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
