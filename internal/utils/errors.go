package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with a user-friendly suggestion.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface.
func (e *ErrorWithSuggestion) Error() string {
	return fmt.Sprintf("%s\n\nSuggestion: %s", e.Err.Error(), e.Suggestion)
}

// GetSuggestion returns the suggestion text.
func (e *ErrorWithSuggestion) GetSuggestion() string {
	return e.Suggestion
}

// Unwrap returns the underlying error for error chain support.
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// WrapWithSuggestion wraps an existing error with a suggestion.
func WrapWithSuggestion(err error, suggestion string) error {
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// ValidationError reports bad user input. The operation that returned it had
// no side effects.
type ValidationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failure reading or writing the task file.
type PersistenceError struct {
	Op   string // "load", "save" or "backup"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Sentinel causes wrapped by ValidationError.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrNotANumber      = errors.New("not a number")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// NewEmptyTitleError returns the validation error for a blank title.
func NewEmptyTitleError() error {
	return &ErrorWithSuggestion{
		Err:        &ValidationError{Field: "title", Err: ErrEmptyTitle},
		Suggestion: "Give the task a short description, e.g. 'supertask add \"Pay rent\"'",
	}
}

// NewInvalidIndexError returns the validation error for non-numeric index input.
func NewInvalidIndexError(input string) error {
	return &ErrorWithSuggestion{
		Err:        &ValidationError{Field: "task number", Err: fmt.Errorf("%w: %q", ErrNotANumber, input)},
		Suggestion: "Enter the task number shown by 'supertask list'",
	}
}

// NewIndexOutOfRangeError returns the validation error for an index outside [1, size].
func NewIndexOutOfRangeError(index, size int) error {
	suggestion := fmt.Sprintf("Choose a number between 1 and %d", size)
	if size == 0 {
		suggestion = "There are no tasks yet. Add one with 'supertask add'"
	}
	return &ErrorWithSuggestion{
		Err:        &ValidationError{Field: "task number", Err: fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)},
		Suggestion: suggestion,
	}
}

// ErrInvalidPriority returns an error for an unknown priority value.
func ErrInvalidPriority(priority string, valid []string) error {
	return &ErrorWithSuggestion{
		Err:        &ValidationError{Field: "priority", Err: fmt.Errorf("unknown value %q", priority)},
		Suggestion: fmt.Sprintf("Valid options: %s", strings.Join(valid, ", ")),
	}
}

// ErrInvalidDate returns an error for an invalid date string.
func ErrInvalidDate(dateStr string) error {
	return &ErrorWithSuggestion{
		Err:        &ValidationError{Field: "date", Err: fmt.Errorf("cannot parse %q", dateStr)},
		Suggestion: "Use date format YYYY-MM-DD (e.g., 2026-01-15)",
	}
}

// ErrInvalidFilter returns an error for an unknown list filter.
func ErrInvalidFilter(filter string) error {
	return &ErrorWithSuggestion{
		Err:        &ValidationError{Field: "filter", Err: fmt.Errorf("unknown value %q", filter)},
		Suggestion: "Valid options: all, completed, pending",
	}
}
