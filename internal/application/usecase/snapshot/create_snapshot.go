// Package snapshot contains wealth snapshot use cases, including the
// ingestion step that drives Hawl transitions.
package snapshot

import (
	"context"
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
	"github.com/zakat-tracker/backend/internal/domain/zakat"
)

// Earliest accepted snapshot date. Older dates are almost always typos.
var minSnapshotDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// CreateSnapshotInput represents the input for logging wealth.
type CreateSnapshotInput struct {
	UserID    uuid.UUID
	UserEmail string
	UserName  string

	Breakdown zakat.Breakdown
	// Prices are quoted in PriceUnit. Nil or zero means not supplied.
	GoldPrice   *decimal.Decimal
	SilverPrice *decimal.Decimal
	PriceUnit   zakat.PriceUnit
	GoldVori    *decimal.Decimal
	SilverVori  *decimal.Decimal

	SnapshotDate *time.Time
	Currency     string
	Notes        string
}

// CreateSnapshotOutput represents the result of ingestion.
type CreateSnapshotOutput struct {
	Snapshot *entity.AssetSnapshot
	Action   hawl.Action
	// Cycle is the cycle the snapshot acted on: the tracking cycle after
	// ingestion, or the cycle that was reset.
	Cycle *entity.HawlCycle
	// Completed lists cycles that became due during ingestion.
	Completed []*entity.HawlCycle
}

// CreateSnapshotUseCase stores a snapshot and applies its Hawl transitions
// in one transaction.
type CreateSnapshotUseCase struct {
	service      *cycle.Service
	transactor   adapter.Transactor
	locker       adapter.UserLocker
	snapshotRepo adapter.SnapshotRepository
	cycleRepo    adapter.HawlCycleRepository
	currency     string
}

// NewCreateSnapshotUseCase creates a new CreateSnapshotUseCase instance.
func NewCreateSnapshotUseCase(
	service *cycle.Service,
	transactor adapter.Transactor,
	locker adapter.UserLocker,
	snapshotRepo adapter.SnapshotRepository,
	cycleRepo adapter.HawlCycleRepository,
	defaultCurrency string,
) *CreateSnapshotUseCase {
	if defaultCurrency == "" {
		defaultCurrency = entity.DefaultCurrency
	}
	return &CreateSnapshotUseCase{
		service:      service,
		transactor:   transactor,
		locker:       locker,
		snapshotRepo: snapshotRepo,
		cycleRepo:    cycleRepo,
		currency:     defaultCurrency,
	}
}

// Execute validates the input, evaluates Nisab and runs the transitions.
func (uc *CreateSnapshotUseCase) Execute(ctx context.Context, input CreateSnapshotInput) (*CreateSnapshotOutput, error) {
	now := uc.service.Now()
	if err := validateInput(input, truncateToDay(now)); err != nil {
		return nil, err
	}

	unit := input.PriceUnit
	if unit == "" {
		unit = zakat.PriceUnitVori
	}

	// Evaluate Nisab with per-gram prices
	goldPrice := positive(input.GoldPrice)
	silverPrice := positive(input.SilverPrice)
	assessment := zakat.Evaluate(input.Breakdown, perGram(unit, goldPrice), perGram(unit, silverPrice))

	snapshotDate := truncateToDay(*input.SnapshotDate)

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = uc.currency
	}

	snap := entity.NewAssetSnapshot(input.UserID, input.Breakdown, assessment, snapshotDate, currency, now)
	snap.GoldPricePerVori = perVori(unit, goldPrice)
	snap.SilverPricePerVori = perVori(unit, silverPrice)
	snap.GoldVori = nullable(input.GoldVori)
	snap.SilverVori = nullable(input.SilverVori)
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		snap.Notes = &notes
	}

	output := &CreateSnapshotOutput{Snapshot: snap}

	err := cycle.RunLocked(ctx, uc.locker, input.UserID, func() error {
		return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			return uc.ingest(ctx, snap, cycle.Recipient{Email: input.UserEmail, Name: input.UserName}, output)
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Snapshot ingested",
		"userID", input.UserID,
		"snapshotID", snap.ID,
		"nisabMet", snap.NisabMet,
		"action", output.Action,
		"completed", len(output.Completed),
	)

	return output, nil
}

func (uc *CreateSnapshotUseCase) ingest(ctx context.Context, snap *entity.AssetSnapshot, recipient cycle.Recipient, output *CreateSnapshotOutput) error {
	if err := uc.snapshotRepo.Create(ctx, snap); err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	tracking, err := uc.service.Sweep(ctx, snap.UserID)
	if err != nil {
		return err
	}

	event := hawl.Event{
		Kind:     hawl.EventSnapshot,
		Snapshot: snap,
		At:       snap.SnapshotDate,
		Now:      uc.service.Now(),
	}
	if tracking == nil && snap.NisabMet {
		event.ContinueFrom, err = uc.service.ContinuationDate(ctx, snap.UserID)
		if err != nil {
			return err
		}
	}

	res, err := hawl.Apply(tracking, event)
	if err != nil {
		return err
	}
	output.Action = res.Action

	switch res.Action {
	case hawl.ActionStarted:
		tracking, _, err = uc.service.Open(ctx, res.Next)
		if err != nil {
			return err
		}
	case hawl.ActionBackdated:
		if err := uc.cycleRepo.Update(ctx, res.Cycle); err != nil {
			return fmt.Errorf("failed to backdate hawl cycle: %w", err)
		}
		tracking = res.Cycle
		slog.Info("Hawl cycle backdated",
			"userID", snap.UserID,
			"cycleID", res.Cycle.ID,
			"hawlStart", res.Cycle.HawlStartDate.Format(time.DateOnly),
		)
	case hawl.ActionReset:
		if err := uc.cycleRepo.Update(ctx, res.Cycle); err != nil {
			return fmt.Errorf("failed to reset hawl cycle: %w", err)
		}
		slog.Info("Hawl cycle reset",
			"userID", snap.UserID,
			"cycleID", res.Cycle.ID,
			"status", res.Cycle.Status,
		)
		output.Cycle = res.Cycle
		return nil
	}

	output.Cycle = tracking
	if tracking == nil {
		return nil
	}

	// Maturity is judged at the snapshot date, never past the clock
	at := snap.SnapshotDate
	if now := uc.service.Now(); now.Before(at) {
		at = now
	}
	result, err := uc.service.CatchUp(ctx, tracking, snap, at, recipient)
	if err != nil {
		return err
	}
	output.Cycle = result.Tracking
	output.Completed = result.Completed
	if len(result.Completed) > 0 {
		output.Action = hawl.ActionCompleted
	}
	return nil
}

func validateInput(input CreateSnapshotInput, today time.Time) error {
	verr := domainerror.NewValidationError(string(domainerror.ErrCodeInvalidSnapshot))

	if input.SnapshotDate == nil || input.SnapshotDate.IsZero() {
		verr.Add("snapshot_date", "Date is required")
	} else if day := truncateToDay(*input.SnapshotDate); day.Before(minSnapshotDate) {
		verr.Code = string(domainerror.ErrCodeSnapshotDateRange)
		verr.Add("snapshot_date", "Date must be on or after 1900-01-01")
		verr.Wrap(domainerror.ErrSnapshotDateOutOfRange)
	} else if day.After(today) {
		verr.Code = string(domainerror.ErrCodeSnapshotDateFuture)
		verr.Add("snapshot_date", "Date cannot be in the future")
		verr.Wrap(domainerror.ErrSnapshotDateInFuture)
	}

	if positive(input.GoldPrice) == nil && positive(input.SilverPrice) == nil {
		if !verr.HasErrors() {
			verr.Code = string(domainerror.ErrCodeMetalPriceRequired)
			verr.Wrap(domainerror.ErrMetalPriceRequired)
		}
		verr.Add("gold_price", "At least one metal price is required")
	}

	if input.PriceUnit != "" && !input.PriceUnit.IsValid() {
		verr.Add("price_unit", "Price unit must be 'gram' or 'vori'")
	}

	amounts := map[string]decimal.Decimal{
		"cash_and_bank":     input.Breakdown.CashAndBank,
		"gold":              input.Breakdown.Gold,
		"silver":            input.Breakdown.Silver,
		"business_assets":   input.Breakdown.BusinessAssets,
		"stocks":            input.Breakdown.Stocks,
		"other_investments": input.Breakdown.OtherInvestments,
		"receivables":       input.Breakdown.Receivables,
		"liabilities":       input.Breakdown.Liabilities,
	}
	for field, amount := range amounts {
		if amount.IsNegative() {
			if !verr.HasErrors() {
				verr.Code = string(domainerror.ErrCodeNegativeAssetAmount)
			}
			verr.Add(field, "Amount cannot be negative")
		}
	}
	for field, qty := range map[string]*decimal.Decimal{"gold_vori": input.GoldVori, "silver_vori": input.SilverVori} {
		if qty != nil && qty.IsNegative() {
			verr.Add(field, "Quantity cannot be negative")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func positive(v *decimal.Decimal) *decimal.Decimal {
	if v == nil || !v.IsPositive() {
		return nil
	}
	return v
}

func perGram(unit zakat.PriceUnit, price *decimal.Decimal) *decimal.Decimal {
	if price == nil {
		return nil
	}
	g := unit.PerGram(*price)
	return &g
}

func perVori(unit zakat.PriceUnit, price *decimal.Decimal) decimal.NullDecimal {
	if price == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(unit.PerVori(*price).Round(2))
}

func nullable(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
