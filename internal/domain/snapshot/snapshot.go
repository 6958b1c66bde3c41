// Package snapshot provides the immutable, column-named record view that every
// analytics pass reads from.
//
// A Snapshot is built once per refresh from the record store and is never
// mutated afterwards. Filtered snapshots are index views over the parent's
// rows, so filtering never copies records.
package snapshot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is a single employee row: field name -> scalar value.
// Scalars are nil, bool, string, or any Go integer/float type.
type Record map[string]any

// Snapshot is an immutable, ordered sequence of records sharing one column set.
type Snapshot struct {
	id      string
	takenAt time.Time
	columns []string
	colSet  map[string]struct{}
	rows    []Record
	// index selects rows of a parent snapshot; nil means all rows in order.
	index []int
}

// Option configures a Snapshot at construction time.
type Option func(*Snapshot)

// WithID overrides the generated snapshot id.
func WithID(id string) Option {
	return func(s *Snapshot) {
		if id != "" {
			s.id = id
		}
	}
}

// WithTakenAt sets the time the snapshot was read from its source.
func WithTakenAt(t time.Time) Option {
	return func(s *Snapshot) {
		if !t.IsZero() {
			s.takenAt = t
		}
	}
}

// New builds a snapshot with a fixed column set. Every row must only use keys
// from columns; keys a row does not carry read as nil. Rows are copied, so the
// caller may reuse its slice and maps afterwards.
func New(columns []string, rows []Record, opts ...Option) (*Snapshot, error) {
	s := newEmpty(columns, opts...)
	s.rows = make([]Record, len(rows))
	for i, r := range rows {
		cp := make(Record, len(r))
		for k, v := range r {
			if _, ok := s.colSet[k]; !ok {
				return nil, fmt.Errorf("%w: row %d has field %q", ErrUnknownColumn, i, k)
			}
			cp[k] = v
		}
		s.rows[i] = cp
	}
	return s, nil
}

// FromRecords builds a snapshot whose column set is the union of the keys of
// all rows, in order of first appearance.
func FromRecords(rows []Record, opts ...Option) *Snapshot {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, r := range rows {
		for _, k := range sortedKeys(r) {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	s, _ := New(columns, rows, opts...) // columns cover every key by construction
	return s
}

// Empty returns a snapshot with no columns and no rows. Used when the record
// store cannot be read.
func Empty(opts ...Option) *Snapshot {
	return newEmpty(nil, opts...)
}

func newEmpty(columns []string, opts ...Option) *Snapshot {
	s := &Snapshot{
		id:      uuid.NewString(),
		takenAt: time.Now().UTC(),
		columns: make([]string, 0, len(columns)),
		colSet:  make(map[string]struct{}, len(columns)),
	}
	for _, c := range columns {
		if _, dup := s.colSet[c]; dup {
			continue
		}
		s.colSet[c] = struct{}{}
		s.columns = append(s.columns, c)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the store read this snapshot (or its parent) came from.
func (s *Snapshot) ID() string { return s.id }

// TakenAt returns when the snapshot was read.
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// Columns returns a copy of the column names in their declared order.
func (s *Snapshot) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// HasColumn reports whether name is a column of the snapshot.
func (s *Snapshot) HasColumn(name string) bool {
	_, ok := s.colSet[name]
	return ok
}

// HasColumns reports whether every name is a column of the snapshot.
func (s *Snapshot) HasColumns(names ...string) bool {
	for _, n := range names {
		if !s.HasColumn(n) {
			return false
		}
	}
	return true
}

// MissingColumns returns the names that are not columns of the snapshot, in
// the order given.
func (s *Snapshot) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !s.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Len returns the number of rows visible through this snapshot.
func (s *Snapshot) Len() int {
	if s.index != nil {
		return len(s.index)
	}
	return len(s.rows)
}

// Value returns the value of column at row i. ok is false when the column is
// not part of the snapshot or i is out of range; a present column with no
// value for the row yields (nil, true).
func (s *Snapshot) Value(i int, column string) (any, bool) {
	if i < 0 || i >= s.Len() || !s.HasColumn(column) {
		return nil, false
	}
	return s.row(i)[column], true
}

// Row returns a copy of row i.
func (s *Snapshot) Row(i int) Record {
	if i < 0 || i >= s.Len() {
		return nil
	}
	src := s.row(i)
	out := make(Record, len(s.columns))
	for _, c := range s.columns {
		out[c] = src[c]
	}
	return out
}

// Each calls fn for every visible row in order. The record passed to fn must
// be treated as read-only; iteration stops when fn returns false.
func (s *Snapshot) Each(fn func(i int, r Record) bool) {
	for i := 0; i < s.Len(); i++ {
		if !fn(i, s.row(i)) {
			return
		}
	}
}

func (s *Snapshot) row(i int) Record {
	if s.index != nil {
		return s.rows[s.index[i]]
	}
	return s.rows[i]
}

// view returns a snapshot sharing rows and columns with s that exposes only
// the rows at the given positions of s.
func (s *Snapshot) view(positions []int) *Snapshot {
	idx := make([]int, len(positions))
	for i, p := range positions {
		if s.index != nil {
			idx[i] = s.index[p]
		} else {
			idx[i] = p
		}
	}
	return &Snapshot{
		id:      s.id,
		takenAt: s.takenAt,
		columns: s.columns,
		colSet:  s.colSet,
		rows:    s.rows,
		index:   idx,
	}
}
