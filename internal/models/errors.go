package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced user, category, budget,
	// expense or alert does not exist (or belongs to another user).
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a concurrent insert already
	// produced the row (duplicate unread alert, duplicate username).
	ErrConflict = errors.New("conflict")
)

// ValidationError is a user-correctable input problem.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotificationError wraps a failed delivery to a notification sink.
type NotificationError struct {
	Sink string
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification via %s failed: %v", e.Sink, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
