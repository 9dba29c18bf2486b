package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for an unknown or expired session.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found or expired", e.Resource, e.ID)
}

// ErrExternalService wraps a failed call to the tax engine.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout is returned when an engine operation exceeds HTTP_TIMEOUT.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s timed out", e.Operation)
}

// ErrCircuitOpen is returned without calling the engine while its breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("%s unavailable: circuit breaker open", e.Service)
}

// ErrValidation reports an out-of-range form value or a request the engine
// rejected.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrCalculationInFlight is returned when a calculate action is attempted while
// the session already waits on the engine.
type ErrCalculationInFlight struct {
	SessionID string
}

func (e *ErrCalculationInFlight) Error() string {
	return fmt.Sprintf("calculation already in progress for session %s", e.SessionID)
}

// ErrUnauthorized indicates a missing or invalid session token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// UserMessage renders a calculation failure for the dismissible banner of a
// session. Nil yields "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validation *ErrValidation
	var timeout *ErrTimeout
	var circuitOpen *ErrCircuitOpen
	switch {
	case errors.As(err, &validation):
		return "The tax engine rejected this household: " + validation.Message
	case errors.As(err, &timeout):
		return "The tax engine took too long to answer. Press Enter to try again."
	case errors.As(err, &circuitOpen):
		return "The tax engine is temporarily unavailable. Try again in a moment."
	}
	return "The tax engine could not complete the calculation. Press Enter to try again."
}
