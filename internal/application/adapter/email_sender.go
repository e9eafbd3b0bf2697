package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ResendID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// EmailService defines the interface for queueing emails.
type EmailService interface {
	// QueueZakatDueEmail queues the notice sent when a Hawl completes.
	QueueZakatDueEmail(ctx context.Context, input QueueZakatDueInput) error
}

// QueueZakatDueInput represents the input for queueing a Zakat due email.
type QueueZakatDueInput struct {
	CycleID     uuid.UUID
	UserEmail   string
	UserName    string
	ZakatAmount decimal.Decimal
	WealthAtDue decimal.Decimal
	Currency    string
	HawlStart   time.Time
	HawlDue     time.Time
}
