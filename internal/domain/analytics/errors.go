package analytics

import "errors"

// Sentinel kinds for unavailable metrics. These allow errors.Is from callers.
var (
	ErrUnavailable   = errors.New("metric unavailable")
	ErrMissingColumn = errors.New("missing column")
)
