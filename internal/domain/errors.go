package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is a normal outcome for lookups (tracking an unknown order id),
// not an exception path.
var ErrNotFound = errors.New("not found")

// ValidationError marks bad input: empty cart, missing customization, invalid
// scheduling window. Surfaced to the caller immediately, never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError marks a persistence failure. For order creation it triggers the
// local fallback path; elsewhere it is a non-fatal notice.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func StoreFailed(op string, err error) error { return &StoreError{Op: op, Err: err} }

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
