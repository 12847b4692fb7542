package service

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Services return these; handlers translate them to
// HTTP statuses and never let a partial mutation escape (validation runs
// before any write, multi-row writes run in one transaction).
var (
	// ErrNotFound is returned when a referenced recipe, user, ingredient,
	// tag, or short code does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when a mutation is attempted by a user who
	// does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyMember is returned when adding a membership (favorite,
	// shopping cart entry, subscription) that already exists.
	ErrAlreadyMember = errors.New("already a member")

	// ErrNotMember is returned when removing a membership that does not
	// exist, distinguishing "nothing to remove" from success.
	ErrNotMember = errors.New("not a member")

	// ErrShortCodeExhausted means the short-code allocator hit its attempt
	// fuse. With a 62^6 code space this signals a data-integrity bug, not a
	// normal runtime condition.
	ErrShortCodeExhausted = errors.New("short code space exhausted")
)

// ValidationError reports malformed or semantically invalid input. It is
// surfaced to the caller with its reason and never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
