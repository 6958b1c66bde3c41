package snapshot

import "fmt"

// Filter is a single optional equality predicate over one column.
// The zero value is the empty filter.
type Filter struct {
	Dimension string `json:"dimension,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// NoFilter is the empty filter.
var NoFilter = Filter{}

// Eq returns a filter matching rows where dimension equals value.
func Eq(dimension string, value any) Filter {
	return Filter{Dimension: dimension, Value: value}
}

// IsEmpty reports whether the filter narrows nothing.
func (f Filter) IsEmpty() bool { return f.Dimension == "" }

func (f Filter) String() string {
	if f.IsEmpty() {
		return "none"
	}
	return fmt.Sprintf("%s=%v", f.Dimension, f.Value)
}

// Apply narrows s to the rows matching f. An empty filter, or one naming a
// column s does not have, returns s itself. No matches yields a zero-row
// snapshot that keeps the column set.
func Apply(s *Snapshot, f Filter) *Snapshot {
	if f.IsEmpty() || !s.HasColumn(f.Dimension) {
		return s
	}
	positions := make([]int, 0)
	s.Each(func(i int, r Record) bool {
		if Equal(r[f.Dimension], f.Value) {
			positions = append(positions, i)
		}
		return true
	})
	return s.view(positions)
}

// Distinct returns the distinct values of column in order of first
// appearance. Nil values are skipped. A missing column yields nil.
func Distinct(s *Snapshot, column string) []any {
	if !s.HasColumn(column) {
		return nil
	}
	seen := make(map[any]struct{})
	var out []any
	s.Each(func(_ int, r Record) bool {
		v := r[column]
		if v == nil {
			return true
		}
		k := Key(v)
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
		out = append(out, v)
		return true
	})
	return out
}
