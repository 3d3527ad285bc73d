package forum

import (
	"errors"
	"fmt"
)

// Terminal failures surfaced to the API layer. None of these are retried.
var (
	// ErrUnauthorized means no session could be resolved.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but lacks permission:
	// a banned role attempting a write, a non-author deleting, a non-admin
	// moderating.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced topic, comment, report or user does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrTopicModerated means the whole topic is hidden by moderation. This
	// is a stronger signal than the comment-level mask: the entire
	// discussion view is suppressed, not just the body text.
	ErrTopicModerated = errors.New("topic moderated")
)

// ValidationError carries a message that is surfaced verbatim to the
// submitting user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
