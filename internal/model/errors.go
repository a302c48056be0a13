package model

import (
	"errors"
	"fmt"
)

// ValidationError reports invalid task or reminder input. It is surfaced
// to the caller as-is and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError reports an operation on an unknown task id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

// Is lets errors.Is(err, ErrTaskNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrTaskNotFound
}

var ErrTaskNotFound = errors.New("task not found")

var (
	ErrTitleRequired   = &ValidationError{Field: "title", Message: "title is required"}
	ErrDueDateRequired = &ValidationError{Field: "due_date", Message: "due date is required"}
	ErrReminderInPast  = &ValidationError{Field: "reminder_at", Message: "custom reminder time must not be in the past"}
	ErrNoReminder      = &ValidationError{Field: "reminder", Message: "no reminder set"}
)

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
