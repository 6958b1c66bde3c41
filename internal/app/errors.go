package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrStoreUnavailable = errors.New("record store unavailable")
)
