package error

import (
	"errors"
	"sort"
	"strings"
)

// ErrStorageUnconfigured is returned when no database is available. Read paths
// treat it as an empty state rather than a failure.
var ErrStorageUnconfigured = errors.New("storage is not configured")

// ValidationError carries field-level messages for invalid input.
type ValidationError struct {
	// Code is the area-specific code (SNP-, PAY-, CAL-).
	Code   string
	Fields map[string]string
	Err    error
}

// NewValidationError creates an empty ValidationError for the given code.
func NewValidationError(code string) *ValidationError {
	return &ValidationError{
		Code:   code,
		Fields: make(map[string]string),
	}
}

// Add records a message for field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Wrap attaches a sentinel error the caller can match with errors.Is.
func (e *ValidationError) Wrap(err error) *ValidationError {
	e.Err = err
	return e
}

// HasErrors reports whether any field failed validation.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CalendarErrorCode defines error codes for calendar conversion errors.
type CalendarErrorCode string

const (
	ErrCodeInvalidGregorianDate CalendarErrorCode = "CAL-010001"
	ErrCodeDateOutOfRange       CalendarErrorCode = "CAL-010002"
)

// SystemErrorCode defines error codes for infrastructure conditions.
type SystemErrorCode string

const (
	ErrCodeStorageUnconfigured SystemErrorCode = "SYS-010001"
	ErrCodeInternal            SystemErrorCode = "SYS-010002"
)
