package domain

import (
	"errors"
	"fmt"
)

// Common domain errors for session and aggregation operations.
var (
	// ErrSessionNotFound indicates the requested session id is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrParticipantNotFound indicates a ballot referenced a participant
	// that never joined the session.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrNoCompletedBallots indicates an early close was requested
	// before any participant completed a ballot.
	ErrNoCompletedBallots = errors.New("no completed ballots")

	// ErrInvalidTransition indicates a session lifecycle transition that
	// the state machine does not permit.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrNoCandidates indicates the voting phase was opened without any
	// candidates to vote on.
	ErrNoCandidates = errors.New("no candidates")

	// ErrInvalidConfiguration indicates configuration is invalid or
	// incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// TransitionError describes a rejected session phase transition.
// It wraps ErrInvalidTransition so callers can match with errors.Is.
type TransitionError struct {
	// SessionID identifies the session whose transition was rejected.
	SessionID string

	// From and To are the phases involved in the rejected transition.
	From string
	To   string
}

// Error implements the error interface for TransitionError.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("session %s: cannot transition %s -> %s", e.SessionID, e.From, e.To)
}

// Unwrap lets errors.Is match TransitionError against ErrInvalidTransition.
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError collects one or more validation failures for an entity.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Errors: make([]string, 0)}
}
