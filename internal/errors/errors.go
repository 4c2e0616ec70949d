// Package errors defines the structured error types used across pagekit.
// Errors carry a category, a stable code, and optional field attribution so
// callers can decide whether a failure is surfaced to the visitor, logged
// silently, or both.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSpam       ErrorType = "spam"
	ErrorTypeSubmission ErrorType = "submission"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeRequiredMissing    = "ERR_REQUIRED_MISSING"
	ErrCodeFormatInvalid      = "ERR_FORMAT_INVALID"
	ErrCodeLengthOutOfBounds  = "ERR_LENGTH_OUT_OF_BOUNDS"
	ErrCodeInvalidSelection   = "ERR_INVALID_SELECTION"
	ErrCodeSpamDetected       = "ERR_SPAM_DETECTED"
	ErrCodeSubmissionFailed   = "ERR_SUBMISSION_FAILED"
	ErrCodeNetworkError       = "NETWORK_ERROR"
	ErrCodeSubmitInFlight     = "ERR_SUBMIT_IN_FLIGHT"
	ErrCodeValidationInternal = "ERR_VALIDATION_INTERNAL"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound       = "ERR_FILE_NOT_FOUND"
)

// PageError is a structured error type with context.
type PageError struct {
	Type        ErrorType
	Code        string
	Message     string
	Field       string
	Cause       error
	Context     map[string]interface{}
	UserVisible bool
}

// Error implements the error interface.
func (e *PageError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Field != "" {
		parts = append(parts, "field:"+e.Field)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PageError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison on type and code.
func (e *PageError) Is(target error) bool {
	var t *PageError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *PageError) WithContext(key string, value interface{}) *PageError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithField attributes the error to a form field.
func (e *PageError) WithField(field string) *PageError {
	e.Field = field

	return e
}

// Error creation functions

// NewValidationError creates a user-visible validation error.
func NewValidationError(code, message string) *PageError {
	return &PageError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		UserVisible: true,
	}
}

// NewSpamError creates a spam rejection error. Spam rejections are never
// shown to the visitor.
func NewSpamError(formID string) *PageError {
	return &PageError{
		Type:        ErrorTypeSpam,
		Code:        ErrCodeSpamDetected,
		Message:     "honeypot field was filled",
		UserVisible: false,
		Context:     map[string]interface{}{"form_id": formID},
	}
}

// NewSubmissionError creates a submission failure error.
func NewSubmissionError(code, message string, cause error) *PageError {
	return &PageError{
		Type:        ErrorTypeSubmission,
		Code:        code,
		Message:     message,
		Cause:       cause,
		UserVisible: true,
	}
}

// NewInternalError creates an internal error. Internal errors are logged and
// surfaced only as a generic message.
func NewInternalError(code, message string, cause error) *PageError {
	return &PageError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *PageError {
	return &PageError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *PageError {
	return &PageError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsSpam checks if an error is a honeypot rejection.
func IsSpam(err error) bool {
	var pe *PageError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypeSpam
	}

	return false
}

// IsUserVisible checks if an error should be shown to the visitor.
func IsUserVisible(err error) bool {
	var pe *PageError
	if errors.As(err, &pe) {
		return pe.UserVisible
	}

	return false
}

// FieldError describes a single failed field for error collections.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (fe FieldError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fe.Field, fe.Message)
}

// ValidationErrors collects per-field validation failures for one form pass.
type ValidationErrors struct {
	Errors []FieldError
}

// Error implements the error interface.
func (ve *ValidationErrors) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return ve.Errors[0].Error()
	default:
		return fmt.Sprintf("validation failed with %d errors", len(ve.Errors))
	}
}

// Add records a field failure.
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are any validation errors.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// First returns the first failed field in recorded order, or the empty
// string. Recorded order follows schema order, so this is the field that
// should receive focus.
func (ve *ValidationErrors) First() string {
	if len(ve.Errors) == 0 {
		return ""
	}

	return ve.Errors[0].Field
}

// ByField returns a field -> message mapping of the collected errors.
func (ve *ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		if _, seen := out[fe.Field]; !seen {
			out[fe.Field] = fe.Message
		}
	}

	return out
}

// ToPageError converts the collection to a single PageError.
func (ve *ValidationErrors) ToPageError() *PageError {
	if !ve.HasErrors() {
		return nil
	}

	var messages []string
	context := make(map[string]interface{}, len(ve.Errors))
	for _, fe := range ve.Errors {
		messages = append(messages, fe.Error())
		context[fe.Field] = fe.Message
	}

	return &PageError{
		Type:        ErrorTypeValidation,
		Code:        ErrCodeFormatInvalid,
		Message:     strings.Join(messages, "; "),
		Context:     context,
		UserVisible: true,
	}
}
