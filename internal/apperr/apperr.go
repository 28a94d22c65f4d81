// Package apperr defines the error kinds the transactional core surfaces to
// its callers. Handlers map these to HTTP statuses; services return them and
// never write partial state once one is detected.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no identity was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity lacks rights over the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means an entity id did not resolve.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed input. Field names the first offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid field %q", e.Field)
	}
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientCreditsError is returned when a debit would overdraw a balance.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}

// StateError reports a booking or escrow action attempted from a state that
// disallows it. The state is reported, never coerced.
type StateError struct {
	Entity string
	From   string
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s cannot %s from state %q", e.Entity, e.Action, e.From)
}

// InvalidTransition builds a StateError.
func InvalidTransition(entity, from, action string) *StateError {
	return &StateError{Entity: entity, From: from, Action: action}
}

// ProviderError wraps a payment-provider failure or unexpected status.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider wraps err as a ProviderError for the given operation.
func Provider(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Err: err}
}
