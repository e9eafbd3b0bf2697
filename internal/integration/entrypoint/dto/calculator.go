package dto

import (
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/application/usecase/calculator"
)

// CalculateRequest represents the request body for the Zakat calculator.
type CalculateRequest struct {
	BreakdownRequest
	GoldPrice   *decimal.Decimal `json:"gold_price,omitempty"`
	SilverPrice *decimal.Decimal `json:"silver_price,omitempty"`
	PriceUnit   string           `json:"price_unit,omitempty"`
}

// CalculateResponse represents the calculator result.
type CalculateResponse struct {
	TotalWealth    string  `json:"total_wealth"`
	GoldNisab      *string `json:"gold_nisab"`
	SilverNisab    *string `json:"silver_nisab"`
	NisabThreshold string  `json:"nisab_threshold"`
	NisabMet       bool    `json:"nisab_met"`
	ZakatAmount    string  `json:"zakat_amount"`
}

// ConvertDateResponse represents a Gregorian/Hijri conversion.
type ConvertDateResponse struct {
	Gregorian    string            `json:"gregorian"`
	Hijri        HijriDateResponse `json:"hijri"`
	Display      string            `json:"display"`
	HawlDueDate  string            `json:"hawl_due_date"`
	HawlDueHijri HijriDateResponse `json:"hawl_due_hijri"`
}

// ToCalculateResponse converts the calculator output to its response DTO.
func ToCalculateResponse(output *calculator.CalculateOutput) CalculateResponse {
	return CalculateResponse{
		TotalWealth:    money(output.TotalWealth),
		GoldNisab:      nullMoney(output.GoldNisab),
		SilverNisab:    nullMoney(output.SilverNisab),
		NisabThreshold: money(output.Threshold),
		NisabMet:       output.NisabMet,
		ZakatAmount:    money(output.ZakatAmount),
	}
}

// ToConvertDateResponse converts the conversion output to its response DTO.
func ToConvertDateResponse(output *calculator.ConvertDateOutput) ConvertDateResponse {
	return ConvertDateResponse{
		Gregorian:    date(output.Gregorian),
		Hijri:        ToHijriDateResponse(output.Hijri),
		Display:      output.Dual,
		HawlDueDate:  date(output.HawlDue),
		HawlDueHijri: ToHijriDateResponse(output.HawlDueHijri),
	}
}
