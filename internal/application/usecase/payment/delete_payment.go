package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/application/usecase/cycle"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/hawl"
)

// DeletePaymentInput represents the input for removing a payment.
type DeletePaymentInput struct {
	UserID    uuid.UUID
	CycleID   uuid.UUID
	PaymentID uuid.UUID
}

// DeletePaymentOutput represents the output of removing a payment.
type DeletePaymentOutput struct {
	Cycle     *entity.HawlCycle
	TotalPaid decimal.Decimal
	Action    hawl.Action
}

// DeletePaymentUseCase removes a payment and reopens the cycle if it is no
// longer covered.
type DeletePaymentUseCase struct {
	transactor  adapter.Transactor
	locker      adapter.UserLocker
	cycleRepo   adapter.HawlCycleRepository
	paymentRepo adapter.PaymentRepository
	epsilon     decimal.Decimal
	now         func() time.Time
}

// NewDeletePaymentUseCase creates a new DeletePaymentUseCase instance.
func NewDeletePaymentUseCase(
	transactor adapter.Transactor,
	locker adapter.UserLocker,
	cycleRepo adapter.HawlCycleRepository,
	paymentRepo adapter.PaymentRepository,
	epsilon decimal.Decimal,
	now func() time.Time,
) *DeletePaymentUseCase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DeletePaymentUseCase{
		transactor:  transactor,
		locker:      locker,
		cycleRepo:   cycleRepo,
		paymentRepo: paymentRepo,
		epsilon:     epsilon,
		now:         now,
	}
}

// Execute deletes the payment and re-evaluates the cycle.
func (uc *DeletePaymentUseCase) Execute(ctx context.Context, input DeletePaymentInput) (*DeletePaymentOutput, error) {
	var output *DeletePaymentOutput

	err := cycle.RunLocked(ctx, uc.locker, input.UserID, func() error {
		return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			output, err = uc.remove(ctx, input)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (uc *DeletePaymentUseCase) remove(ctx context.Context, input DeletePaymentInput) (*DeletePaymentOutput, error) {
	c, err := findCycle(ctx, uc.cycleRepo, input.UserID, input.CycleID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.paymentRepo.FindByID(ctx, c.ID, input.PaymentID); err != nil {
		if errors.Is(err, domainerror.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if err := uc.paymentRepo.Delete(ctx, c.ID, input.PaymentID); err != nil {
		return nil, fmt.Errorf("failed to delete payment: %w", err)
	}

	summary, err := uc.paymentRepo.SummaryByCycle(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise payments: %w", err)
	}

	output := &DeletePaymentOutput{
		Cycle:     c,
		TotalPaid: summary.TotalPaid,
		Action:    hawl.ActionNone,
	}

	// Only settled obligations can reopen
	if c.Status != entity.HawlStatusDue && c.Status != entity.HawlStatusPaid {
		return output, nil
	}

	res, err := settle(ctx, uc.cycleRepo, c, summary.TotalPaid, uc.epsilon, uc.now())
	if err != nil {
		return nil, err
	}
	output.Cycle = res.Cycle
	output.Action = res.Action
	return output, nil
}
