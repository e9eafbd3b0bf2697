package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentCategory classifies a Zakat distribution.
type PaymentCategory string

const (
	PaymentCategoryPoorNeedy    PaymentCategory = "Poor/Needy"
	PaymentCategoryEducation    PaymentCategory = "Education"
	PaymentCategoryHealthcare   PaymentCategory = "Healthcare"
	PaymentCategoryDebtRelief   PaymentCategory = "Debt Relief"
	PaymentCategoryIslamicCause PaymentCategory = "Islamic Cause"
	PaymentCategoryOther        PaymentCategory = "Other"
)

// PaymentCategories lists the accepted categories in display order.
func PaymentCategories() []PaymentCategory {
	return []PaymentCategory{
		PaymentCategoryPoorNeedy,
		PaymentCategoryEducation,
		PaymentCategoryHealthcare,
		PaymentCategoryDebtRelief,
		PaymentCategoryIslamicCause,
		PaymentCategoryOther,
	}
}

// IsValid reports whether c is one of the accepted categories.
func (c PaymentCategory) IsValid() bool {
	for _, known := range PaymentCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ZakatPayment is a distribution recorded against a Hawl cycle.
type ZakatPayment struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	HawlCycleID uuid.UUID
	Amount      decimal.Decimal
	Recipient   string
	Category    PaymentCategory
	Date        time.Time
	Notes       *string
	CreatedAt   time.Time
}

// NewZakatPayment creates a new payment for a cycle.
func NewZakatPayment(userID, cycleID uuid.UUID, amount decimal.Decimal, recipient string, category PaymentCategory, date time.Time, now time.Time) *ZakatPayment {
	return &ZakatPayment{
		ID:          uuid.New(),
		UserID:      userID,
		HawlCycleID: cycleID,
		Amount:      amount,
		Recipient:   recipient,
		Category:    category,
		Date:        date,
		CreatedAt:   now,
	}
}

// PaymentSummary aggregates the payments of a cycle.
type PaymentSummary struct {
	TotalPaid    decimal.Decimal
	PaymentCount int
}

// RecentPayment is a payment joined with the currency of its cycle.
type RecentPayment struct {
	Payment  *ZakatPayment
	Currency string
}
