package hawl

import (
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

// OutstandingCycle is a due cycle with what is left to pay on it.
type OutstandingCycle struct {
	Cycle        *entity.HawlCycle
	ZakatAmount  decimal.Decimal
	TotalPaid    decimal.Decimal
	PaymentCount int
	Remaining    decimal.Decimal
}

// Outstanding is the combined unpaid obligation across due cycles.
type Outstanding struct {
	Cycles           []OutstandingCycle
	TotalOutstanding decimal.Decimal
}

// HasOutstanding reports whether anything remains to be paid.
func (o Outstanding) HasOutstanding() bool {
	return o.TotalOutstanding.IsPositive()
}

// ComputeOutstanding folds due cycles into per-cycle and total remaining
// amounts. Overpaid cycles contribute zero, never a negative amount.
func ComputeOutstanding(due []entity.CycleWithPayments) Outstanding {
	out := Outstanding{
		Cycles:           make([]OutstandingCycle, 0, len(due)),
		TotalOutstanding: decimal.Zero,
	}

	for _, cw := range due {
		owed := decimal.Zero
		if cw.Cycle != nil && cw.Cycle.ZakatAmount.Valid {
			owed = cw.Cycle.ZakatAmount.Decimal
		}

		remaining := owed.Sub(cw.TotalPaid)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		out.Cycles = append(out.Cycles, OutstandingCycle{
			Cycle:        cw.Cycle,
			ZakatAmount:  owed,
			TotalPaid:    cw.TotalPaid,
			PaymentCount: cw.PaymentCount,
			Remaining:    remaining,
		})
		out.TotalOutstanding = out.TotalOutstanding.Add(remaining)
	}

	return out
}
