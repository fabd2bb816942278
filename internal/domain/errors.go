package domain

import "errors"

var (
	// ErrUnauthorized covers missing, invalid or expired credentials and
	// credentials that point at a user that no longer exists.
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrRateLimited  = errors.New("rate limited")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	// ErrUpstream wraps failures of the external generation provider.
	ErrUpstream = errors.New("upstream failure")
)

// ValidationError carries a user-facing message for a rejected input
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) match any *ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
