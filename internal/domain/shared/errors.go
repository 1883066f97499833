// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages. This package has zero external
// dependencies beyond the uuid library used for identities.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Computation errors
	ErrInsufficientData = errors.New("insufficient data")
	ErrDegenerateInput  = errors.New("degenerate input")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "scoreboard", "game", "group"
	Op      string // Operation that failed, e.g., "Assemble", "Fit"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Game domain errors
var (
	ErrGameNotFound    = NewDomainError("game", "Find", ErrNotFound, "game not found")
	ErrInvalidGameName = NewDomainError("game", "Validate", ErrInvalidInput, "invalid game name")
	ErrInvalidMetric   = NewDomainError("game", "Validate", ErrInvalidInput, "unknown ranking metric")
)

// Group domain errors
var (
	ErrGroupNotFound  = NewDomainError("group", "Find", ErrNotFound, "group not found")
	ErrMemberNotFound = NewDomainError("group", "CheckMembership", ErrForbidden, "user is not a member of the group")
)

// Feature gating errors
var (
	ErrFeatureDisabled = NewDomainError("query", "CheckFeature", ErrForbidden, "feature is disabled for this player")
)

// Scoreboard domain errors
var (
	ErrPlayerNotInScoreboard = NewDomainError("scoreboard", "FindPlayer", ErrNotFound, "player has no matches in this game")
	ErrNotEnoughData         = NewDomainError("scoreboard", "FitDistribution", ErrInsufficientData, "not enough matches to fit a distribution")
	ErrDegenerateScores      = NewDomainError("scoreboard", "FitDistribution", ErrDegenerateInput, "score sample has zero variance")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsInsufficientData reports whether the error is a recoverable
// "not enough samples" failure from the distribution estimator.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
