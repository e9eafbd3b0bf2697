package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/hijri"
)

// HawlStatus is the lifecycle state of a Hawl cycle.
type HawlStatus string

const (
	// HawlStatusIdle is never persisted. It describes a user without an active cycle.
	HawlStatusIdle     HawlStatus = "idle"
	HawlStatusTracking HawlStatus = "tracking"
	HawlStatusDue      HawlStatus = "due"
	HawlStatusPaid     HawlStatus = "paid"
	HawlStatusReset    HawlStatus = "reset"
)

// IsValid reports whether s is a persisted status.
func (s HawlStatus) IsValid() bool {
	switch s {
	case HawlStatusTracking, HawlStatusDue, HawlStatusPaid, HawlStatusReset:
		return true
	}
	return false
}

// HawlCycle is one continuous stretch of wealth at or above Nisab.
type HawlCycle struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Status          HawlStatus
	StartSnapshotID uuid.UUID

	HawlStartDate  time.Time
	HawlStartHijri hijri.Date
	HawlDueDate    time.Time
	HawlDueHijri   hijri.Date

	EndDate         *time.Time
	ResetSnapshotID *uuid.UUID

	// Set when the cycle becomes due.
	ZakatAmount decimal.NullDecimal
	WealthAtDue decimal.NullDecimal

	Currency  string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewHawlCycle creates a tracking cycle that starts on start.
func NewHawlCycle(userID, startSnapshotID uuid.UUID, start time.Time, currency string, now time.Time) *HawlCycle {
	if currency == "" {
		currency = DefaultCurrency
	}

	c := &HawlCycle{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          HawlStatusTracking,
		StartSnapshotID: startSnapshotID,
		Currency:        currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	c.SetStart(start)
	return c
}

// SetStart moves the start of the cycle and recomputes the due date
// 12 Hijri months later.
func (c *HawlCycle) SetStart(start time.Time) {
	c.HawlStartDate = start
	c.HawlStartHijri = hijri.FromGregorian(start)
	c.HawlDueDate, c.HawlDueHijri = hijri.HawlDueDate(start)
}

// IsTracking reports whether the cycle is still counting toward its Hawl.
func (c *HawlCycle) IsTracking() bool {
	return c.Status == HawlStatusTracking
}

// Clone returns a copy that can be mutated independently.
func (c *HawlCycle) Clone() *HawlCycle {
	cp := *c
	if c.EndDate != nil {
		end := *c.EndDate
		cp.EndDate = &end
	}
	if c.ResetSnapshotID != nil {
		id := *c.ResetSnapshotID
		cp.ResetSnapshotID = &id
	}
	return &cp
}

// CycleWithPayments is a cycle together with its aggregated payments.
type CycleWithPayments struct {
	Cycle        *HawlCycle
	TotalPaid    decimal.Decimal
	PaymentCount int
}
