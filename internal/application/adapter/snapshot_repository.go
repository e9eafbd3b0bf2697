// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

// SnapshotRepository defines the interface for asset snapshot persistence operations.
type SnapshotRepository interface {
	// Create inserts a snapshot with all computed fields populated.
	Create(ctx context.Context, snapshot *entity.AssetSnapshot) error

	// FindByID retrieves a snapshot owned by the user.
	FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.AssetSnapshot, error)

	// FindLatestByUser returns the snapshot with the most recent snapshot date, or nil.
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*entity.AssetSnapshot, error)

	// ListByUser returns up to limit snapshots, newest snapshot date first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AssetSnapshot, error)
}
