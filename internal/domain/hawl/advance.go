package hawl

import (
	"time"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

// DefaultMaxSteps bounds the catch-up loop for a single evaluation.
const DefaultMaxSteps = 10

// Step is one tracking -> due transition made during catch-up.
type Step struct {
	// Due is the cycle that matured, now in status due.
	Due *entity.HawlCycle
	// Next is the tracking cycle opened at Due's due date.
	Next *entity.HawlCycle
}

// Advance is the result of AdvanceUntilCurrent.
type Advance struct {
	// Final is the tracking cycle left after catch-up. It is the input cycle
	// when no step was taken.
	Final *entity.HawlCycle
	Steps []Step
	// Exhausted is set when maxSteps was reached while cycles were still overdue.
	Exhausted bool
}

// AdvanceUntilCurrent completes the tracking cycle repeatedly until its due
// date is after at, so a user absent for several lunar years gets one due
// cycle per elapsed Hawl. Nothing happens without a snapshot above Nisab.
// Re-running it on its own output is a no-op.
func AdvanceUntilCurrent(cycle *entity.HawlCycle, latest *entity.AssetSnapshot, at, now time.Time, maxSteps int) Advance {
	adv := Advance{Final: cycle}

	for canMature(adv.Final, latest, at) {
		if len(adv.Steps) >= maxSteps {
			adv.Exhausted = true
			break
		}

		res, err := Complete(adv.Final, latest, at, now)
		if err != nil {
			break
		}
		adv.Steps = append(adv.Steps, Step{Due: res.Cycle, Next: res.Next})
		adv.Final = res.Next
	}

	return adv
}

func canMature(cycle *entity.HawlCycle, latest *entity.AssetSnapshot, at time.Time) bool {
	return cycle != nil &&
		cycle.IsTracking() &&
		latest != nil &&
		latest.NisabMet &&
		IsHawlComplete(cycle.HawlDueDate, at)
}
