package errors

import (
	"errors"
	"fmt"
)

// PagemarkError is the structured error type for pagemark.
// It carries enough context for logging and for user presentation.
type PagemarkError struct {
	// Code is the unique error code (e.g., "ERR_203_TEXT_EXTRACT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *PagemarkError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PagemarkError) Unwrap() error {
	return e.Cause
}

// Is matches another PagemarkError by code, so errors.Is works with sentinel
// values built by New.
func (e *PagemarkError) Is(target error) bool {
	if t, ok := target.(*PagemarkError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *PagemarkError) WithDetail(key, value string) *PagemarkError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *PagemarkError) WithSuggestion(suggestion string) *PagemarkError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PagemarkError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *PagemarkError {
	return &PagemarkError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a PagemarkError from an existing error.
// The error's message becomes the PagemarkError message.
func Wrap(code string, err error) *PagemarkError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *PagemarkError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *PagemarkError {
	return New(ErrCodeInvalidInput, message, cause)
}

// PageError creates an error scoped to a single page.
func PageError(code string, page int, cause error) *PagemarkError {
	msg := fmt.Sprintf("page %d failed", page)
	if cause != nil {
		msg = fmt.Sprintf("page %d: %v", page, cause)
	}
	return New(code, msg, cause).WithDetail("page", fmt.Sprint(page))
}

// As returns the first PagemarkError in err's chain.
func As(err error) (*PagemarkError, bool) {
	var pe *PagemarkError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if pe, ok := As(err); ok {
		return pe.Severity == SeverityFatal
	}
	return false
}

// IsPageScoped reports whether err only affects a single page.
func IsPageScoped(err error) bool {
	pe, ok := As(err)
	if !ok {
		return false
	}
	_, hasPage := pe.Details["page"]
	return hasPage
}

// GetCode extracts the error code from a PagemarkError.
// Returns empty string if err carries none.
func GetCode(err error) string {
	if pe, ok := As(err); ok {
		return pe.Code
	}
	return ""
}
