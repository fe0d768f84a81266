// Package common defines the sentinel errors and error types shared by the
// issue store, the issue service and the REST layer. Callers should use
// errors.Is / errors.As to match them.
package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorStore         = errors.New("store error")

	// Service-level errors.
	ErrorValidation = errors.New("validation error")
)

// ValidationError reports a payload field that failed normalization.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}

// StoreError wraps any persistence failure with the store operation that
// produced it. It matches ErrorStore and unwraps to the underlying cause.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrorStore
}
