// Package payment contains Zakat payment use cases. Adding or removing a
// payment settles or reopens the owning cycle.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/application/usecase/cycle"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/hawl"
)

// AddPaymentInput represents the input for recording a payment.
type AddPaymentInput struct {
	UserID    uuid.UUID
	CycleID   uuid.UUID
	Amount    *decimal.Decimal
	Recipient string
	Category  entity.PaymentCategory
	Date      *time.Time
	Notes     string
}

// AddPaymentOutput represents the output of recording a payment.
type AddPaymentOutput struct {
	Payment   *entity.ZakatPayment
	Cycle     *entity.HawlCycle
	TotalPaid decimal.Decimal
	Action    hawl.Action
}

// AddPaymentUseCase records a payment against a due cycle.
type AddPaymentUseCase struct {
	transactor  adapter.Transactor
	locker      adapter.UserLocker
	cycleRepo   adapter.HawlCycleRepository
	paymentRepo adapter.PaymentRepository
	epsilon     decimal.Decimal
	now         func() time.Time
}

// NewAddPaymentUseCase creates a new AddPaymentUseCase instance.
func NewAddPaymentUseCase(
	transactor adapter.Transactor,
	locker adapter.UserLocker,
	cycleRepo adapter.HawlCycleRepository,
	paymentRepo adapter.PaymentRepository,
	epsilon decimal.Decimal,
	now func() time.Time,
) *AddPaymentUseCase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AddPaymentUseCase{
		transactor:  transactor,
		locker:      locker,
		cycleRepo:   cycleRepo,
		paymentRepo: paymentRepo,
		epsilon:     epsilon,
		now:         now,
	}
}

// Execute validates and stores the payment, then settles the cycle when the
// obligation is covered.
func (uc *AddPaymentUseCase) Execute(ctx context.Context, input AddPaymentInput) (*AddPaymentOutput, error) {
	// Validate fields
	verr := domainerror.NewValidationError(string(domainerror.ErrCodeInvalidPayment))
	if input.Amount == nil || !input.Amount.IsPositive() {
		verr.Add("amount", "Amount must be greater than 0")
	}
	recipient := strings.TrimSpace(input.Recipient)
	if recipient == "" {
		verr.Add("recipient", "Recipient is required")
	}
	if input.Category == "" {
		verr.Add("category", "Category is required")
	} else if !input.Category.IsValid() {
		verr.Add("category", "Category is not recognised")
	}
	if input.Date == nil || input.Date.IsZero() {
		verr.Add("date", "Date is required")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// The remaining amount is checked under the user lock
	var output *AddPaymentOutput
	err := cycle.RunLocked(ctx, uc.locker, input.UserID, func() error {
		return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			output, err = uc.record(ctx, input, recipient)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Zakat payment recorded",
		"userID", input.UserID,
		"cycleID", input.CycleID,
		"paymentID", output.Payment.ID,
		"status", output.Cycle.Status,
	)
	return output, nil
}

func (uc *AddPaymentUseCase) record(ctx context.Context, input AddPaymentInput, recipient string) (*AddPaymentOutput, error) {
	c, err := findCycle(ctx, uc.cycleRepo, input.UserID, input.CycleID)
	if err != nil {
		return nil, err
	}
	if c.Status != entity.HawlStatusDue && c.Status != entity.HawlStatusPaid {
		v := domainerror.NewValidationError(string(domainerror.ErrCodeCycleNotPayable)).
			Wrap(domainerror.ErrCycleNotPayable)
		v.Add("hawl_cycle_id", fmt.Sprintf("Cycle is %s, payments need a due cycle", c.Status))
		return nil, v
	}

	summary, err := uc.paymentRepo.SummaryByCycle(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise payments: %w", err)
	}

	// Reject payments beyond what is still owed
	owed := c.ZakatAmount.Decimal
	remaining := owed.Sub(summary.TotalPaid)
	if input.Amount.GreaterThan(remaining.Add(uc.epsilon)) {
		v := domainerror.NewValidationError(string(domainerror.ErrCodeAmountExceedsRemaining)).
			Wrap(domainerror.ErrAmountExceedsRemaining)
		v.Add("amount", fmt.Sprintf("Amount exceeds remaining (%s)", remaining.StringFixed(2)))
		return nil, v
	}

	now := uc.now()
	p := entity.NewZakatPayment(input.UserID, c.ID, *input.Amount, recipient, input.Category, *input.Date, now)
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		p.Notes = &notes
	}
	if err := uc.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	totalPaid := summary.TotalPaid.Add(p.Amount)
	res, err := settle(ctx, uc.cycleRepo, c, totalPaid, uc.epsilon, now)
	if err != nil {
		return nil, err
	}

	return &AddPaymentOutput{
		Payment:   p,
		Cycle:     res.Cycle,
		TotalPaid: totalPaid,
		Action:    res.Action,
	}, nil
}

func findCycle(ctx context.Context, repo adapter.HawlCycleRepository, userID, cycleID uuid.UUID) (*entity.HawlCycle, error) {
	c, err := repo.FindByID(ctx, userID, cycleID)
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
	return c, nil
}

// settle applies the payment total to the cycle and persists any status change.
func settle(ctx context.Context, repo adapter.HawlCycleRepository, c *entity.HawlCycle, totalPaid, epsilon decimal.Decimal, now time.Time) (hawl.Result, error) {
	res, err := hawl.Apply(c, hawl.Event{
		Kind:      hawl.EventPaymentsChanged,
		TotalPaid: totalPaid,
		Epsilon:   epsilon,
		Now:       now,
	})
	if err != nil {
		return hawl.Result{}, err
	}

	if res.Action != hawl.ActionNone {
		if err := repo.Update(ctx, res.Cycle); err != nil {
			return hawl.Result{}, fmt.Errorf("failed to update hawl cycle: %w", err)
		}
		slog.Info("Hawl cycle settlement changed",
			"userID", c.UserID,
			"cycleID", c.ID,
			"action", res.Action,
			"status", res.Cycle.Status,
		)
	}
	return res, nil
}
