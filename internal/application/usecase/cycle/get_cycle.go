package cycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/hawl"
)

// GetCycleInput represents the input for retrieving a cycle.
type GetCycleInput struct {
	UserID  uuid.UUID
	CycleID uuid.UUID
}

// GetCycleOutput is a cycle with its payments and settlement summary.
type GetCycleOutput struct {
	Cycle        *entity.HawlCycle
	Payments     []*entity.ZakatPayment
	TotalPaid    decimal.Decimal
	Remaining    decimal.Decimal
	PaymentCount int
	FullyPaid    bool
}

// GetCycleUseCase retrieves a single cycle.
type GetCycleUseCase struct {
	cycleRepo   adapter.HawlCycleRepository
	paymentRepo adapter.PaymentRepository
	epsilon     decimal.Decimal
}

// NewGetCycleUseCase creates a new GetCycleUseCase instance.
func NewGetCycleUseCase(cycleRepo adapter.HawlCycleRepository, paymentRepo adapter.PaymentRepository, epsilon decimal.Decimal) *GetCycleUseCase {
	return &GetCycleUseCase{
		cycleRepo:   cycleRepo,
		paymentRepo: paymentRepo,
		epsilon:     epsilon,
	}
}

// Execute loads the cycle, its payments and what remains to pay.
func (uc *GetCycleUseCase) Execute(ctx context.Context, input GetCycleInput) (*GetCycleOutput, error) {
	c, err := uc.cycleRepo.FindByID(ctx, input.UserID, input.CycleID)
	if err != nil {
		if errors.Is(err, domainerror.ErrHawlCycleNotFound) {
			return nil, domainerror.NewHawlError(
				domainerror.ErrCodeHawlCycleNotFound,
				"hawl cycle not found",
				domainerror.ErrHawlCycleNotFound,
			)
		}
		return nil, fmt.Errorf("failed to get hawl cycle: %w", err)
	}

	payments, err := uc.paymentRepo.ListByCycle(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	summary, err := uc.paymentRepo.SummaryByCycle(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise payments: %w", err)
	}

	outstanding := hawl.ComputeOutstanding([]entity.CycleWithPayments{{
		Cycle:        c,
		TotalPaid:    summary.TotalPaid,
		PaymentCount: summary.PaymentCount,
	}})

	return &GetCycleOutput{
		Cycle:        c,
		Payments:     payments,
		TotalPaid:    summary.TotalPaid,
		Remaining:    outstanding.TotalOutstanding,
		PaymentCount: summary.PaymentCount,
		FullyPaid:    c.ZakatAmount.Valid && hawl.IsCovered(c.ZakatAmount, summary.TotalPaid, uc.epsilon),
	}, nil
}
