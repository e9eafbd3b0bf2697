// Package hawl implements the Hawl cycle lifecycle: the transitions between
// tracking, due, paid and reset, the multi-year catch-up, and the derived
// views shown to the user. Functions here are pure. They return updated
// copies of the cycles they are given and leave persistence to the caller.
package hawl

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/zakat"
)

// DefaultPaymentEpsilon absorbs rounding when comparing payments to the amount owed.
var DefaultPaymentEpsilon = decimal.RequireFromString("0.01")

// Action describes what a transition did.
type Action string

const (
	ActionNone      Action = "none"
	ActionStarted   Action = "started"
	ActionContinued Action = "continued"
	ActionBackdated Action = "backdated"
	ActionCompleted Action = "completed"
	ActionReset     Action = "reset"
	ActionPaid      Action = "paid"
	ActionReopened  Action = "reopened"
)

// EventKind identifies what happened to a user's wealth or payments.
type EventKind string

const (
	// EventSnapshot is a newly ingested wealth snapshot.
	EventSnapshot EventKind = "snapshot"
	// EventMatured is the passage of time past a cycle's due date.
	EventMatured EventKind = "matured"
	// EventPaymentsChanged follows a payment being added to or removed from a cycle.
	EventPaymentsChanged EventKind = "payments_changed"
)

// Event is the input to Apply.
type Event struct {
	Kind EventKind

	// Snapshot is the triggering snapshot for EventSnapshot and the latest
	// known wealth for EventMatured.
	Snapshot *entity.AssetSnapshot

	// ContinueFrom, when set, is the due date of the user's most recent
	// unfulfilled cycle. A new cycle starts there instead of at the snapshot date.
	ContinueFrom *time.Time

	// TotalPaid and Epsilon are used by EventPaymentsChanged.
	TotalPaid decimal.Decimal
	Epsilon   decimal.Decimal

	// At is the instant maturity is judged against.
	At time.Time
	// Now stamps EndDate and UpdatedAt.
	Now time.Time
}

// Result is the outcome of a transition.
type Result struct {
	Action Action
	// Cycle is the updated input cycle, nil when there was none.
	Cycle *entity.HawlCycle
	// Next is a newly created tracking cycle, if the transition spawned one.
	Next *entity.HawlCycle
}

// Apply runs a single transition for the current cycle. current may be nil
// when the user is idle.
func Apply(current *entity.HawlCycle, ev Event) (Result, error) {
	switch ev.Kind {
	case EventSnapshot:
		return applySnapshot(current, ev)
	case EventMatured:
		if current == nil {
			return Result{}, fmt.Errorf("%w: no cycle to complete", domainerror.ErrInvalidTransition)
		}
		return Complete(current, ev.Snapshot, ev.At, ev.Now)
	case EventPaymentsChanged:
		if current == nil {
			return Result{}, fmt.Errorf("%w: no cycle to settle", domainerror.ErrInvalidTransition)
		}
		return ApplyPayments(current, ev.TotalPaid, ev.Epsilon, ev.Now)
	default:
		return Result{}, fmt.Errorf("%w: unknown event %q", domainerror.ErrInvalidTransition, ev.Kind)
	}
}

func applySnapshot(current *entity.HawlCycle, ev Event) (Result, error) {
	if ev.Snapshot == nil {
		return Result{}, fmt.Errorf("%w: snapshot event without snapshot", domainerror.ErrInvalidTransition)
	}

	tracking := current != nil && current.IsTracking()

	if !ev.Snapshot.NisabMet {
		if !tracking {
			return Result{Action: ActionNone, Cycle: current}, nil
		}
		return Reset(current, ev.Snapshot, ev.Now)
	}

	if !tracking {
		return Result{Action: ActionStarted, Cycle: current, Next: Start(ev.Snapshot, ev.ContinueFrom, ev.Now)}, nil
	}

	if ev.Snapshot.SnapshotDate.Before(current.HawlStartDate) {
		return Backdate(current, ev.Snapshot, ev.Now)
	}
	return Result{Action: ActionContinued, Cycle: current}, nil
}

// Start opens a tracking cycle for the snapshot's owner. The cycle starts on
// the snapshot date, or at continueFrom when the previous Hawl is still unpaid.
func Start(snapshot *entity.AssetSnapshot, continueFrom *time.Time, now time.Time) *entity.HawlCycle {
	start := snapshot.SnapshotDate
	if continueFrom != nil {
		start = *continueFrom
	}
	return entity.NewHawlCycle(snapshot.UserID, snapshot.ID, start, snapshot.Currency, now)
}

// Backdate rewinds a tracking cycle to an earlier qualifying snapshot.
func Backdate(current *entity.HawlCycle, snapshot *entity.AssetSnapshot, now time.Time) (Result, error) {
	if !current.IsTracking() {
		return Result{}, fmt.Errorf("%w: cannot backdate a %s cycle", domainerror.ErrInvalidTransition, current.Status)
	}
	if !snapshot.SnapshotDate.Before(current.HawlStartDate) {
		return Result{}, fmt.Errorf("%w: snapshot is not earlier than the hawl start", domainerror.ErrInvalidTransition)
	}

	c := current.Clone()
	c.SetStart(snapshot.SnapshotDate)
	c.StartSnapshotID = snapshot.ID
	c.UpdatedAt = now
	return Result{Action: ActionBackdated, Cycle: c}, nil
}

// Complete moves a matured tracking cycle to due and opens the next cycle at
// its due date. The latest snapshot must still be above Nisab.
func Complete(current *entity.HawlCycle, latest *entity.AssetSnapshot, at, now time.Time) (Result, error) {
	if !current.IsTracking() {
		return Result{}, fmt.Errorf("%w: cannot complete a %s cycle", domainerror.ErrInvalidTransition, current.Status)
	}
	if !IsHawlComplete(current.HawlDueDate, at) {
		return Result{}, fmt.Errorf("%w: hawl due on %s has not elapsed", domainerror.ErrInvalidTransition, current.HawlDueDate.Format(time.DateOnly))
	}
	if latest == nil || !latest.NisabMet {
		return Result{}, fmt.Errorf("%w: wealth is not above nisab", domainerror.ErrInvalidTransition)
	}

	c := current.Clone()
	c.Status = entity.HawlStatusDue
	c.WealthAtDue = decimal.NewNullDecimal(latest.TotalWealth)
	c.ZakatAmount = decimal.NewNullDecimal(zakat.CalculateZakat(latest.TotalWealth))
	c.EndDate = &now
	c.UpdatedAt = now

	next := entity.NewHawlCycle(current.UserID, latest.ID, current.HawlDueDate, latest.Currency, now)
	return Result{Action: ActionCompleted, Cycle: c, Next: next}, nil
}

// Reset ends a tracking cycle because wealth fell below Nisab.
func Reset(current *entity.HawlCycle, snapshot *entity.AssetSnapshot, now time.Time) (Result, error) {
	if !current.IsTracking() {
		return Result{}, fmt.Errorf("%w: cannot reset a %s cycle", domainerror.ErrInvalidTransition, current.Status)
	}

	c := current.Clone()
	c.Status = entity.HawlStatusReset
	c.EndDate = &now
	c.UpdatedAt = now
	if snapshot != nil {
		id := snapshot.ID
		c.ResetSnapshotID = &id
	}
	return Result{Action: ActionReset, Cycle: c}, nil
}

// ApplyPayments settles or reopens a due/paid cycle against the total paid so far.
func ApplyPayments(current *entity.HawlCycle, totalPaid, epsilon decimal.Decimal, now time.Time) (Result, error) {
	if current.Status != entity.HawlStatusDue && current.Status != entity.HawlStatusPaid {
		return Result{}, fmt.Errorf("%w: %s cycle carries no obligation", domainerror.ErrInvalidTransition, current.Status)
	}

	covered := IsCovered(current.ZakatAmount, totalPaid, epsilon)

	switch {
	case current.Status == entity.HawlStatusDue && covered:
		c := current.Clone()
		c.Status = entity.HawlStatusPaid
		c.EndDate = &now
		c.UpdatedAt = now
		return Result{Action: ActionPaid, Cycle: c}, nil
	case current.Status == entity.HawlStatusPaid && !covered:
		c := current.Clone()
		c.Status = entity.HawlStatusDue
		c.EndDate = nil
		c.UpdatedAt = now
		return Result{Action: ActionReopened, Cycle: c}, nil
	default:
		return Result{Action: ActionNone, Cycle: current}, nil
	}
}

// IsCovered reports whether totalPaid settles zakatAmount within epsilon.
// A null amount is treated as zero.
func IsCovered(zakatAmount decimal.NullDecimal, totalPaid, epsilon decimal.Decimal) bool {
	owed := decimal.Zero
	if zakatAmount.Valid {
		owed = zakatAmount.Decimal
	}
	return totalPaid.Add(epsilon).GreaterThanOrEqual(owed)
}
