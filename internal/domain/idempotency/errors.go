package idempotency

import (
	"errors"
	"fmt"
)

// MaxKeyLength bounds Idempotency-Key values.
const MaxKeyLength = 255

// Sentinel kinds for guard errors. ErrEmptyKey and ErrKeyTooLong both match
// ErrInvalidKey.
var (
	ErrInvalidKey = errors.New("invalid idempotency key")
	ErrEmptyKey   = fmt.Errorf("%w: empty", ErrInvalidKey)
	ErrKeyTooLong = fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, MaxKeyLength)
	ErrInFlight   = errors.New("request with this idempotency key is in progress")
)
