// Package analytics computes attrition metrics over record snapshots.
//
// Every metric is a pure function of a snapshot. A metric whose required
// columns are missing does not fail: it yields an unavailable Result carrying
// a human-readable reason, and the other metrics of the same refresh are
// unaffected.
package analytics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/attrition/internal/domain/snapshot"
)

// Result holds either a computed metric value or the reason it is unavailable.
type Result[T any] struct {
	value T
	err   error
}

// Available wraps a computed value.
func Available[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Unavailable marks a metric as not computable. A nil err is replaced with a
// generic reason so the result still reads as unavailable.
func Unavailable[T any](err error) Result[T] {
	if err == nil {
		err = ErrUnavailable
	}
	return Result[T]{err: err}
}

// OK reports whether the value was computed.
func (r Result[T]) OK() bool { return r.err == nil }

// Get returns the value and whether it is available.
func (r Result[T]) Get() (T, bool) { return r.value, r.err == nil }

// Value returns the value, or the zero value when unavailable.
func (r Result[T]) Value() T { return r.value }

// Err returns the unavailability cause, nil when available.
func (r Result[T]) Err() error { return r.err }

// Reason returns a human-readable explanation, empty when available.
func (r Result[T]) Reason() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

type resultJSON[T any] struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Data      *T     `json:"data,omitempty"`
}

// MarshalJSON renders {"available":true,"data":...} or
// {"available":false,"reason":"..."}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := resultJSON[T]{Available: r.OK(), Reason: r.Reason()}
	if r.OK() {
		v := r.value
		out.Data = &v
	}
	return json.Marshal(out)
}

// requireColumns returns a MissingColumn error naming the absent columns, or
// nil when s has all of them.
func requireColumns(s *snapshot.Snapshot, columns ...string) error {
	missing := s.MissingColumns(columns...)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s data not available", ErrMissingColumn, strings.Join(missing, ", "))
}
