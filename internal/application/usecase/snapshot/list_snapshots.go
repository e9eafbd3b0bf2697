package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListSnapshotsInput represents the input for listing snapshots.
type ListSnapshotsInput struct {
	UserID uuid.UUID
	Limit  int
}

// ListSnapshotsOutput represents the output of listing snapshots.
type ListSnapshotsOutput struct {
	Snapshots []*entity.AssetSnapshot
}

// ListSnapshotsUseCase returns a user's snapshot history.
type ListSnapshotsUseCase struct {
	snapshotRepo adapter.SnapshotRepository
}

// NewListSnapshotsUseCase creates a new ListSnapshotsUseCase instance.
func NewListSnapshotsUseCase(snapshotRepo adapter.SnapshotRepository) *ListSnapshotsUseCase {
	return &ListSnapshotsUseCase{
		snapshotRepo: snapshotRepo,
	}
}

// Execute lists snapshots, newest snapshot date first.
func (uc *ListSnapshotsUseCase) Execute(ctx context.Context, input ListSnapshotsInput) (*ListSnapshotsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	snapshots, err := uc.snapshotRepo.ListByUser(ctx, input.UserID, limit)
	if err != nil {
		if errors.Is(err, domainerror.ErrStorageUnconfigured) {
			return &ListSnapshotsOutput{Snapshots: []*entity.AssetSnapshot{}}, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return &ListSnapshotsOutput{
		Snapshots: snapshots,
	}, nil
}
