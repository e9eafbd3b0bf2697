package cycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
)

// ListCyclesInput represents the input for listing cycles.
type ListCyclesInput struct {
	UserID uuid.UUID
}

// ListCyclesOutput represents the output of listing cycles.
type ListCyclesOutput struct {
	Cycles []entity.CycleWithPayments
}

// ListCyclesUseCase returns the user's Hawl history.
type ListCyclesUseCase struct {
	cycleRepo adapter.HawlCycleRepository
}

// NewListCyclesUseCase creates a new ListCyclesUseCase instance.
func NewListCyclesUseCase(cycleRepo adapter.HawlCycleRepository) *ListCyclesUseCase {
	return &ListCyclesUseCase{
		cycleRepo: cycleRepo,
	}
}

// Execute lists all cycles with payment totals, newest first.
func (uc *ListCyclesUseCase) Execute(ctx context.Context, input ListCyclesInput) (*ListCyclesOutput, error) {
	cycles, err := uc.cycleRepo.ListWithPayments(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrStorageUnconfigured) {
			return &ListCyclesOutput{Cycles: []entity.CycleWithPayments{}}, nil
		}
		return nil, fmt.Errorf("failed to list hawl cycles: %w", err)
	}

	return &ListCyclesOutput{
		Cycles: cycles,
	}, nil
}
