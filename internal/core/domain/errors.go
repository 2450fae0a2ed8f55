package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Codes follow the format TM-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "TM-CSRF-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two domain errors match when their
// codes are equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// CSRF configuration and wiring errors.
var (
	// ErrInvalidParamName indicates an empty token parameter name while
	// validation is enabled.
	ErrInvalidParamName = NewDomainError("TM-CSRF-4000", "invalid csrf parameter name")

	// ErrInvalidTokenLength indicates a token length below the entropy floor.
	ErrInvalidTokenLength = NewDomainError("TM-CSRF-4001", "invalid csrf token length")

	// ErrMissingSession indicates a session-scoped operation without a session ID.
	ErrMissingSession = NewDomainError("TM-CSRF-4002", "missing session id")

	// ErrInvalidSessionID indicates a malformed session ID.
	ErrInvalidSessionID = NewDomainError("TM-CSRF-4003", "invalid session id")

	// ErrMissingStore indicates a guard was built without a token store.
	ErrMissingStore = NewDomainError("TM-CSRF-5000", "token store not configured")

	// ErrMissingSource indicates a guard was built without a random source.
	ErrMissingSource = NewDomainError("TM-CSRF-5001", "random source not configured")
)

// System errors.
var (
	// ErrInternal indicates an internal error.
	ErrInternal = NewDomainError("TM-SYS-5000", "internal error")
)
