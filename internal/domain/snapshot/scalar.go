package snapshot

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Float converts a scalar to float64. Strings, nil, booleans, NaN and
// infinities are not numeric.
func Float(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Equal compares two scalars. Numbers compare by value regardless of their Go
// type, and a string compares equal to a number when it parses to the same
// value, so "2" matches a JobLevel of 2. Everything else uses ==; strings are
// matched exactly (case and whitespace included).
func Equal(a, b any) bool {
	fa, aNum := Float(a)
	fb, bNum := Float(b)
	switch {
	case aNum && bNum:
		return fa == fb
	case aNum:
		if s, ok := b.(string); ok {
			p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			return err == nil && p == fa
		}
		return false
	case bNum:
		if s, ok := a.(string); ok {
			p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			return err == nil && p == fb
		}
		return false
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !isScalar(a) || !isScalar(b) {
		return false
	}
	return a == b
}

// Key returns a map key for v such that Equal values of the same kind map to
// the same key. Numeric values share a float64 key; NaN collapses to one key.
func Key(v any) any {
	if f, ok := Float(v); ok {
		return f
	}
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return nanKey{}
		}
	case float32:
		if math.IsNaN(float64(x)) {
			return nanKey{}
		}
	}
	if !isScalar(v) {
		return unhashable{}
	}
	return v
}

type nanKey struct{}

type unhashable struct{}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

func sortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
