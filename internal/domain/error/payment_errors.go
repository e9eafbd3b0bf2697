package error

import "errors"

// Payment domain errors.
var (
	// ErrPaymentNotFound is returned when a payment does not exist on the given cycle.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAmountExceedsRemaining is returned when a payment is larger than what is still owed.
	ErrAmountExceedsRemaining = errors.New("amount exceeds remaining zakat")

	// ErrCycleNotPayable is returned when paying into a cycle that carries no obligation.
	ErrCycleNotPayable = errors.New("hawl cycle has no zakat obligation")
)

// PaymentErrorCode defines error codes for payment errors.
// Format: PAY-XXYYYY where XX is category and YYYY is specific error.
type PaymentErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidPayment         PaymentErrorCode = "PAY-010001"
	ErrCodeAmountExceedsRemaining PaymentErrorCode = "PAY-010002"
	ErrCodeCycleNotPayable        PaymentErrorCode = "PAY-010003"

	// Lookup errors (02XXXX)
	ErrCodePaymentNotFound PaymentErrorCode = "PAY-020001"
)
