package hawl

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
	"github.com/zakat-tracker/backend/internal/domain/hijri"
)

// DefaultStaleDays is how old the latest snapshot may get before the user is
// reminded to log their wealth again.
const DefaultStaleDays = 30

const day = 24 * time.Hour

// State is the view of a user's active cycle.
type State struct {
	Status         entity.HawlStatus
	CycleID        *uuid.UUID
	HawlStartDate  *time.Time
	HawlStartHijri *hijri.Date
	HawlDueDate    *time.Time
	HawlDueHijri   *hijri.Date

	DaysElapsed     int
	DaysRemaining   int
	TotalDays       int
	ProgressPercent int

	ZakatAmount      decimal.NullDecimal
	LastSnapshotDate *time.Time
	IsStale          bool
}

// ComputeState derives the state for a cycle and the latest snapshot, either
// of which may be nil.
func ComputeState(cycle *entity.HawlCycle, latest *entity.AssetSnapshot, now time.Time, staleDays int) State {
	s := State{
		Status:  entity.HawlStatusIdle,
		IsStale: true,
	}
	if latest != nil {
		date := latest.SnapshotDate
		s.LastSnapshotDate = &date
		s.IsStale = IsSnapshotStale(date, now, staleDays)
	}

	if cycle == nil {
		return s
	}

	id := cycle.ID
	start, due := cycle.HawlStartDate, cycle.HawlDueDate
	startHijri, dueHijri := cycle.HawlStartHijri, cycle.HawlDueHijri

	s.Status = cycle.Status
	s.CycleID = &id
	s.HawlStartDate = &start
	s.HawlStartHijri = &startHijri
	s.HawlDueDate = &due
	s.HawlDueHijri = &dueHijri
	s.ZakatAmount = cycle.ZakatAmount

	s.TotalDays = CalculateDaysElapsed(start, due)
	s.DaysElapsed = min(CalculateDaysElapsed(start, now), s.TotalDays)
	s.DaysRemaining = s.TotalDays - s.DaysElapsed

	switch {
	case cycle.Status == entity.HawlStatusDue || cycle.Status == entity.HawlStatusPaid:
		s.ProgressPercent = 100
	case s.TotalDays > 0:
		pct := int(math.Round(100 * float64(s.DaysElapsed) / float64(s.TotalDays)))
		s.ProgressPercent = max(0, min(100, pct))
	}

	return s
}

// CalculateDaysElapsed returns the whole days from start to now, or 0 when
// now is not after start.
func CalculateDaysElapsed(start, now time.Time) int {
	if !now.After(start) {
		return 0
	}
	return int(now.Sub(start) / day)
}

// IsHawlComplete reports whether the due date has been reached (inclusive).
func IsHawlComplete(due, now time.Time) bool {
	return !now.Before(due)
}

// IsSnapshotStale reports whether the snapshot is at least thresholdDays old.
func IsSnapshotStale(snapshotDate, now time.Time, thresholdDays int) bool {
	if now.Before(snapshotDate) {
		return false
	}
	return int(now.Sub(snapshotDate)/day) >= thresholdDays
}
