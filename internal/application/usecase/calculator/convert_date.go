package calculator

import (
	"context"
	"strings"
	"time"

	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/hijri"
)

// ConvertDateInput represents the input for a calendar conversion.
type ConvertDateInput struct {
	// Date is a Gregorian date in YYYY-MM-DD form.
	Date string
}

// ConvertDateOutput carries both calendars and the Hawl due date that a
// cycle starting on Date would have.
type ConvertDateOutput struct {
	Gregorian    time.Time
	Hijri        hijri.Date
	Dual         string
	HawlDue      time.Time
	HawlDueHijri hijri.Date
}

// ConvertDateUseCase converts a Gregorian date to the Hijri calendar.
type ConvertDateUseCase struct{}

// NewConvertDateUseCase creates a new ConvertDateUseCase instance.
func NewConvertDateUseCase() *ConvertDateUseCase {
	return &ConvertDateUseCase{}
}

// Execute parses and converts the date.
func (uc *ConvertDateUseCase) Execute(_ context.Context, input ConvertDateInput) (*ConvertDateOutput, error) {
	raw := strings.TrimSpace(input.Date)
	if raw == "" {
		verr := domainerror.NewValidationError(string(domainerror.ErrCodeInvalidGregorianDate))
		verr.Add("date", "Date is required")
		return nil, verr
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		verr := domainerror.NewValidationError(string(domainerror.ErrCodeInvalidGregorianDate))
		verr.Add("date", "Date must be in YYYY-MM-DD format")
		return nil, verr
	}

	h := hijri.FromGregorian(t)
	if !h.Valid() {
		verr := domainerror.NewValidationError(string(domainerror.ErrCodeDateOutOfRange))
		verr.Add("date", "Date is before the start of the Hijri calendar")
		return nil, verr
	}

	due, dueHijri := hijri.HawlDueDate(t)
	return &ConvertDateOutput{
		Gregorian:    t,
		Hijri:        h,
		Dual:         hijri.FormatDual(t),
		HawlDue:      due,
		HawlDueHijri: dueHijri,
	}, nil
}
