// Package cycle contains Hawl cycle use cases: the dashboard read path with
// lazy catch-up, cycle history and cycle detail.
package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	"github.com/zakat-tracker/backend/internal/domain/hawl"
)

// Recipient identifies who is told when a cycle becomes due. An empty email
// disables the notice.
type Recipient struct {
	Email string
	Name  string
}

// CatchUpResult reports what CatchUp persisted.
type CatchUpResult struct {
	Tracking  *entity.HawlCycle
	Completed []*entity.HawlCycle
	Exhausted bool
}

// Service holds the Hawl steps shared by ingestion and the dashboard. Every
// method expects to run inside a transaction opened by the caller.
type Service struct {
	cycleRepo    adapter.HawlCycleRepository
	emailService adapter.EmailService
	maxSteps     int
	now          func() time.Time
}

// NewService creates a new Service instance. emailService may be nil.
func NewService(cycleRepo adapter.HawlCycleRepository, emailService adapter.EmailService, maxSteps int, now func() time.Time) *Service {
	if maxSteps <= 0 {
		maxSteps = hawl.DefaultMaxSteps
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cycleRepo:    cycleRepo,
		emailService: emailService,
		maxSteps:     maxSteps,
		now:          now,
	}
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Sweep keeps the newest tracking cycle of the user and resets any others.
// It returns the surviving tracking cycle, or nil.
func (s *Service) Sweep(ctx context.Context, userID uuid.UUID) (*entity.HawlCycle, error) {
	tracking, err := s.cycleRepo.ListTracking(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking cycles: %w", err)
	}
	if len(tracking) == 0 {
		return nil, nil
	}

	now := s.now()
	for _, dup := range tracking[1:] {
		res, err := hawl.Reset(dup, nil, now)
		if err != nil {
			return nil, err
		}
		if err := s.cycleRepo.Update(ctx, res.Cycle); err != nil {
			return nil, fmt.Errorf("failed to reset duplicate tracking cycle: %w", err)
		}
		slog.Warn("Reset duplicate tracking cycle",
			"userID", userID,
			"cycleID", dup.ID,
			"keptCycleID", tracking[0].ID,
		)
	}

	return tracking[0], nil
}

// ContinuationDate returns the due date of the user's latest closed cycle when
// that cycle is still unpaid, so a new Hawl starts where it ended. A reset or
// paid cycle closed after it breaks continuity, and the new Hawl starts fresh.
func (s *Service) ContinuationDate(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	last, err := s.cycleRepo.FindLatestClosed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest closed cycle: %w", err)
	}
	if last == nil || last.Status != entity.HawlStatusDue {
		return nil, nil
	}
	due := last.HawlDueDate
	return &due, nil
}

// Open inserts a new tracking cycle. If the user already has one, that
// cycle is returned instead and reused is true.
func (s *Service) Open(ctx context.Context, next *entity.HawlCycle) (cycle *entity.HawlCycle, reused bool, err error) {
	existing, err := s.cycleRepo.FindLatestTracking(ctx, next.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find tracking cycle: %w", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	if err := s.cycleRepo.Create(ctx, next); err != nil {
		return nil, false, fmt.Errorf("failed to create hawl cycle: %w", err)
	}

	slog.Info("Hawl cycle started",
		"userID", next.UserID,
		"cycleID", next.ID,
		"hawlStart", next.HawlStartDate.Format(time.DateOnly),
		"hawlDue", next.HawlDueDate.Format(time.DateOnly),
	)
	return next, false, nil
}

// CatchUp completes the tracking cycle for every Hawl that elapsed by at and
// persists each step.
func (s *Service) CatchUp(ctx context.Context, tracking *entity.HawlCycle, latest *entity.AssetSnapshot, at time.Time, recipient Recipient) (*CatchUpResult, error) {
	adv := hawl.AdvanceUntilCurrent(tracking, latest, at, s.now(), s.maxSteps)
	result := &CatchUpResult{Tracking: tracking}

	for _, step := range adv.Steps {
		if err := s.cycleRepo.Update(ctx, step.Due); err != nil {
			return nil, fmt.Errorf("failed to mark hawl cycle due: %w", err)
		}
		result.Completed = append(result.Completed, step.Due)

		slog.Info("Hawl cycle completed",
			"userID", step.Due.UserID,
			"cycleID", step.Due.ID,
			"status", step.Due.Status,
			"zakatAmount", step.Due.ZakatAmount.Decimal.StringFixed(2),
		)
		if err := s.notifyDue(ctx, step.Due, recipient); err != nil {
			return nil, err
		}

		next, reused, err := s.Open(ctx, step.Next)
		if err != nil {
			return nil, err
		}
		result.Tracking = next
		if reused {
			// Another writer already opened the next cycle; its dates win.
			slog.Warn("Reused existing tracking cycle during catch-up",
				"userID", next.UserID,
				"cycleID", next.ID,
			)
			return result, nil
		}
	}

	if adv.Exhausted {
		result.Exhausted = true
		slog.Warn("Hawl catch-up iteration cap reached",
			"userID", tracking.UserID,
			"maxSteps", s.maxSteps,
			"cycleID", result.Tracking.ID,
			"hawlDue", result.Tracking.HawlDueDate.Format(time.DateOnly),
		)
	}

	return result, nil
}

func (s *Service) notifyDue(ctx context.Context, due *entity.HawlCycle, recipient Recipient) error {
	if s.emailService == nil || recipient.Email == "" {
		return nil
	}

	err := s.emailService.QueueZakatDueEmail(ctx, adapter.QueueZakatDueInput{
		CycleID:     due.ID,
		UserEmail:   recipient.Email,
		UserName:    recipient.Name,
		ZakatAmount: due.ZakatAmount.Decimal,
		WealthAtDue: due.WealthAtDue.Decimal,
		Currency:    due.Currency,
		HawlStart:   due.HawlStartDate,
		HawlDue:     due.HawlDueDate,
	})
	if err != nil {
		return fmt.Errorf("failed to queue zakat due email: %w", err)
	}
	return nil
}
