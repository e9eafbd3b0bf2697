package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

// PaymentRepository defines the interface for Zakat payment persistence operations.
type PaymentRepository interface {
	// Create records a payment.
	Create(ctx context.Context, payment *entity.ZakatPayment) error

	// Delete removes a payment from its cycle.
	Delete(ctx context.Context, cycleID, paymentID uuid.UUID) error

	// FindByID retrieves a payment of the given cycle.
	FindByID(ctx context.Context, cycleID, paymentID uuid.UUID) (*entity.ZakatPayment, error)

	// ListByCycle returns the payments of a cycle, most recent date first.
	ListByCycle(ctx context.Context, cycleID uuid.UUID) ([]*entity.ZakatPayment, error)

	// SummaryByCycle returns the total paid and payment count of a cycle.
	SummaryByCycle(ctx context.Context, cycleID uuid.UUID) (*entity.PaymentSummary, error)

	// ListRecentByUser returns the user's latest payments across all cycles.
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.RecentPayment, error)
}
