package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound           = errors.New("employee not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrUnknownField       = errors.New("field cannot be updated")
	ErrInvalidValue       = errors.New("invalid field value")
	ErrInvalidEmployee    = errors.New("invalid employee")
	ErrInvalidLimit       = errors.New("invalid list limit")
	ErrUnknownReference   = errors.New("referenced row does not exist")
)
