package api

import (
	"errors"
	"net/http"

	"github.com/okian/attrition/internal/adapters/repository"
	"github.com/okian/attrition/internal/domain/idempotency"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// Error ties an error to the operation that produced it and, optionally, a
// sentinel kind used to pick the response status.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind returns an error of kind for op without a cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// statusFor maps an error to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, idempotency.ErrInvalidKey),
		errors.Is(err, repository.ErrInvalidEmployee),
		errors.Is(err, repository.ErrUnknownField),
		errors.Is(err, repository.ErrInvalidValue),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrDepartmentNotFound):
		return http.StatusUnprocessableEntity, "unknown_department"
	case errors.Is(err, repository.ErrUnknownReference):
		return http.StatusUnprocessableEntity, "unknown_reference"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, idempotency.ErrInFlight):
		return http.StatusConflict, "in_flight"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
