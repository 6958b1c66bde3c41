package snapshot

import "errors"

// Sentinel kinds for snapshot construction errors.
var (
	ErrUnknownColumn = errors.New("field is not a snapshot column")
)
