package service

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Handlers translate these into 4xx responses;
// raw storage errors never cross the API boundary.
var (
	// ErrNotFound covers missing entities and absent edges on removal.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is a unique-constraint violation on an edge entity.
	ErrDuplicate = errors.New("already exists")
	// ErrSelfReference rejects following yourself.
	ErrSelfReference = errors.New("self reference")
	// ErrPermissionDenied rejects mutating a recipe the actor does not own.
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError reports a malformed recipe payload: empty ingredients,
// non-positive amounts or cooking time, duplicated ingredient or tag ids.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a recipe payload validation
// failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
