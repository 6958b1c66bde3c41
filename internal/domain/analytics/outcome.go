package analytics

// Default outcome markers, matching the values stored in the Attrition column.
const (
	DefaultAttritionField  = "Attrition"
	DefaultPositiveMarker  = "Yes"
	DefaultNegativeMarker  = "No"
	attritionBinaryFeature = "AttritionBinary"
)

// Outcome describes the binary attrition column and its markers.
//
// Matching is exact: only a string value identical to Positive counts as
// attrition. "yes", "YES" or 1 do not match.
type Outcome struct {
	Field    string
	Positive string
	// Negative, when set, is the only value sorted into the "no" partition of
	// a distribution. When empty every non-positive value is "no".
	Negative string
}

// DefaultOutcome returns the Attrition/Yes/No outcome.
func DefaultOutcome() Outcome {
	return Outcome{
		Field:    DefaultAttritionField,
		Positive: DefaultPositiveMarker,
		Negative: DefaultNegativeMarker,
	}
}

// IsPositive reports whether v is exactly the positive marker.
func (o Outcome) IsPositive(v any) bool {
	s, ok := v.(string)
	return ok && s == o.Positive
}

// IsNegative reports whether v belongs to the negative partition.
func (o Outcome) IsNegative(v any) bool {
	if o.IsPositive(v) {
		return false
	}
	if o.Negative == "" {
		return true
	}
	s, ok := v.(string)
	return ok && s == o.Negative
}

// Binary maps the outcome to 1 for the positive marker and 0 otherwise.
func (o Outcome) Binary(v any) float64 {
	if o.IsPositive(v) {
		return 1
	}
	return 0
}
