// Package email provides email sending functionality.
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/hijri"
)

// Service handles email queueing operations.
type Service struct {
	queue      adapter.EmailQueueRepository
	appBaseURL string
	now        func() time.Time
}

// NewService creates a new email service.
func NewService(queue adapter.EmailQueueRepository, appBaseURL string, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		queue:      queue,
		appBaseURL: appBaseURL,
		now:        now,
	}
}

// QueueZakatDueEmail queues the notice for a cycle that just became due.
// A cycle is announced at most once.
func (s *Service) QueueZakatDueEmail(ctx context.Context, input adapter.QueueZakatDueInput) error {
	exists, err := s.queue.ExistsForReference(ctx, entity.TemplateZakatDue, input.CycleID)
	if err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeEmailQueueFailed,
			"failed to check existing zakat due email",
			fmt.Errorf("%w: %w", domainerror.ErrEmailQueueFailed, err),
		)
	}
	if exists {
		return nil
	}

	subject := fmt.Sprintf("Your Zakat of %s %s is due", input.ZakatAmount.StringFixed(2), input.Currency)

	templateData := map[string]interface{}{
		"user_name":     input.UserName,
		"zakat_amount":  input.ZakatAmount.StringFixed(2),
		"wealth_at_due": input.WealthAtDue.StringFixed(2),
		"currency":      input.Currency,
		"hawl_start":    hijri.FormatDual(input.HawlStart),
		"hawl_due":      hijri.FormatDual(input.HawlDue),
		"cycle_url":     fmt.Sprintf("%s/hawl/cycles/%s", s.appBaseURL, input.CycleID),
	}

	job := entity.NewEmailJob(
		entity.TemplateZakatDue,
		input.UserEmail,
		input.UserName,
		subject,
		templateData,
		s.now(),
	)
	ref := input.CycleID
	job.ReferenceID = &ref

	if err := s.queue.Create(ctx, job); err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeEmailQueueFailed,
			"failed to queue zakat due email",
			fmt.Errorf("%w: %w", domainerror.ErrEmailQueueFailed, err),
		)
	}

	return nil
}

// Ensure Service implements adapter.EmailService.
var _ adapter.EmailService = (*Service)(nil)
