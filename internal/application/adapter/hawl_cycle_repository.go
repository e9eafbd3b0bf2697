package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

// HawlCycleRepository defines the interface for Hawl cycle persistence operations.
type HawlCycleRepository interface {
	// Create inserts a new cycle. Returns domainerror.ErrTrackingCycleExists
	// when the user already has a tracking cycle.
	Create(ctx context.Context, cycle *entity.HawlCycle) error

	// Update saves status, dates, amounts and snapshot references of a cycle.
	Update(ctx context.Context, cycle *entity.HawlCycle) error

	// FindByID retrieves a cycle owned by the user.
	FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.HawlCycle, error)

	// ListTracking returns every tracking cycle of the user, newest first.
	ListTracking(ctx context.Context, userID uuid.UUID) ([]*entity.HawlCycle, error)

	// FindLatestTracking returns the newest tracking cycle, or nil.
	FindLatestTracking(ctx context.Context, userID uuid.UUID) (*entity.HawlCycle, error)

	// FindLatestClosed returns the non-tracking cycle with the latest due date, or nil.
	FindLatestClosed(ctx context.Context, userID uuid.UUID) (*entity.HawlCycle, error)

	// ListDueWithPayments returns due cycles with their payment totals, oldest Hawl first.
	ListDueWithPayments(ctx context.Context, userID uuid.UUID) ([]entity.CycleWithPayments, error)

	// ListWithPayments returns all cycles with their payment totals, newest first.
	ListWithPayments(ctx context.Context, userID uuid.UUID) ([]entity.CycleWithPayments, error)
}
