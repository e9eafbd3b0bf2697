package error

import "errors"

// Hawl cycle domain errors.
var (
	// ErrHawlCycleNotFound is returned when a cycle does not exist or belongs to another user.
	ErrHawlCycleNotFound = errors.New("hawl cycle not found")

	// ErrInvalidTransition is returned when an event does not apply to the cycle's status.
	ErrInvalidTransition = errors.New("invalid hawl transition")

	// ErrTrackingCycleExists is returned when storage refuses a second tracking cycle for a user.
	ErrTrackingCycleExists = errors.New("a tracking cycle already exists for this user")

	// ErrUserBusy is returned when another request holds the user's evaluation lock.
	ErrUserBusy = errors.New("another request is updating this user's hawl")
)

// HawlErrorCode defines error codes for Hawl cycle errors.
// Format: HWL-XXYYYY where XX is category and YYYY is specific error.
type HawlErrorCode string

const (
	// Lookup errors (01XXXX)
	ErrCodeHawlCycleNotFound HawlErrorCode = "HWL-010001"
	ErrCodeInvalidCycleID    HawlErrorCode = "HWL-010002"

	// State errors (02XXXX)
	ErrCodeInvalidTransition   HawlErrorCode = "HWL-020001"
	ErrCodeTrackingCycleExists HawlErrorCode = "HWL-020002"
	ErrCodeUserBusy            HawlErrorCode = "HWL-020003"
)

// HawlError represents a Hawl cycle error with code and message.
type HawlError struct {
	Code    HawlErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HawlError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *HawlError) Unwrap() error {
	return e.Err
}

// NewHawlError creates a new HawlError with the given code and message.
func NewHawlError(code HawlErrorCode, message string, err error) *HawlError {
	return &HawlError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
