// Package service implements the process discovery engine: sequence
// mining, task generation, and task reprioritization. Services talk to
// each other only through persisted state, never directly.
package service

import (
	"errors"
	"fmt"
)

// Common sentinel errors shared by the engine services.
var (
	// ErrFeatureDisabled is returned when a feature gate reports the
	// requested operation off for the tenant. It is raised, never
	// silently swallowed, so the boundary layer can answer accordingly.
	ErrFeatureDisabled = errors.New("feature is disabled")

	// ErrForbidden is returned when a caller-supplied authorization
	// check fails.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidUserID is returned when an operation is invoked without
	// a user.
	ErrInvalidUserID = errors.New("user ID cannot be empty")
)

// ServiceError wraps engine failures with the operation that produced
// them. Persistence failures from the store layer arrive here already
// rolled back; the wrapper adds context without hiding the cause.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "mine", "generate")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError. Known sentinels pass
// through unwrapped so errors.Is keeps working at the boundary.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrFeatureDisabled) || errors.Is(err, ErrForbidden) {
		return err
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
