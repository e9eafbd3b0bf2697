// Package calculator contains stateless use cases: the Zakat calculator and
// the Gregorian/Hijri conversion helper. Nothing here touches storage.
package calculator

import (
	"context"

	"github.com/shopspring/decimal"

	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/zakat"
)

// CalculateInput represents the input for a one-off Zakat calculation.
type CalculateInput struct {
	Breakdown   zakat.Breakdown
	GoldPrice   *decimal.Decimal
	SilverPrice *decimal.Decimal
	PriceUnit   zakat.PriceUnit
}

// CalculateOutput represents the evaluated breakdown.
type CalculateOutput struct {
	TotalWealth decimal.Decimal
	GoldNisab   decimal.NullDecimal
	SilverNisab decimal.NullDecimal
	Threshold   decimal.Decimal
	NisabMet    bool
	ZakatAmount decimal.Decimal
}

// CalculateUseCase evaluates wealth against Nisab without persisting anything.
type CalculateUseCase struct{}

// NewCalculateUseCase creates a new CalculateUseCase instance.
func NewCalculateUseCase() *CalculateUseCase {
	return &CalculateUseCase{}
}

// Execute validates the input and runs the evaluation. Zakat is only owed when
// Nisab is met.
func (uc *CalculateUseCase) Execute(_ context.Context, input CalculateInput) (*CalculateOutput, error) {
	verr := domainerror.NewValidationError(string(domainerror.ErrCodeInvalidSnapshot))
	if input.PriceUnit != "" && !input.PriceUnit.IsValid() {
		verr.Add("price_unit", "Price unit must be 'gram' or 'vori'")
	}
	for field, price := range map[string]*decimal.Decimal{"gold_price": input.GoldPrice, "silver_price": input.SilverPrice} {
		if price != nil && price.IsNegative() {
			verr.Add(field, "Price cannot be negative")
		}
	}
	if input.Breakdown.Liabilities.IsNegative() || input.Breakdown.Assets().IsNegative() {
		verr.Add("breakdown", "Amounts cannot be negative")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	unit := input.PriceUnit
	if unit == "" {
		unit = zakat.PriceUnitVori
	}

	a := zakat.Evaluate(input.Breakdown, perGram(unit, input.GoldPrice), perGram(unit, input.SilverPrice))

	out := &CalculateOutput{
		TotalWealth: a.TotalWealth,
		GoldNisab:   round(a.Nisab.Gold),
		SilverNisab: round(a.Nisab.Silver),
		Threshold:   a.Threshold,
		NisabMet:    a.NisabMet,
		ZakatAmount: decimal.Zero,
	}
	if a.NisabMet {
		out.ZakatAmount = a.Zakat
	}
	return out, nil
}

func perGram(unit zakat.PriceUnit, price *decimal.Decimal) *decimal.Decimal {
	if price == nil || !price.IsPositive() {
		return nil
	}
	g := unit.PerGram(*price)
	return &g
}

func round(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Round(2))
}
