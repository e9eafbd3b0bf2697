// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/hijri"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HijriDateResponse is a Hijri date in short and long form.
type HijriDateResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Short string `json:"short"`
	Long  string `json:"long"`
}

// ToHijriDateResponse converts a Hijri date to its response form.
func ToHijriDateResponse(d hijri.Date) HijriDateResponse {
	return HijriDateResponse{
		Year:  d.Year,
		Month: d.Month,
		Day:   d.Day,
		Short: d.String(),
		Long:  d.Long(),
	}
}

// Amounts are serialised as strings with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func nullQuantity(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func date(t time.Time) string {
	return t.Format(time.DateOnly)
}

func nullDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
