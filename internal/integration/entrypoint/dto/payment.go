package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

// CreatePaymentRequest represents the request body for recording a payment.
type CreatePaymentRequest struct {
	Amount    *decimal.Decimal `json:"amount"`
	Recipient string           `json:"recipient"`
	Category  string           `json:"category"`
	Date      string           `json:"date"`
	Notes     string           `json:"notes,omitempty"`
}

// PaymentResponse represents a single payment in API responses.
type PaymentResponse struct {
	ID          string    `json:"id"`
	HawlCycleID string    `json:"hawl_cycle_id"`
	Amount      string    `json:"amount"`
	Recipient   string    `json:"recipient"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecentPaymentResponse is a payment with the currency of its cycle.
type RecentPaymentResponse struct {
	PaymentResponse
	Currency string `json:"currency"`
}

// PaymentMutationResponse is returned after adding or removing a payment.
type PaymentMutationResponse struct {
	Payment   *PaymentResponse `json:"payment,omitempty"`
	Cycle     CycleResponse    `json:"cycle"`
	TotalPaid string           `json:"total_paid"`
	Action    string           `json:"action"`
}

// PaymentCategoriesResponse lists the accepted payment categories.
type PaymentCategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ToPaymentResponse converts a domain ZakatPayment entity to a PaymentResponse DTO.
func ToPaymentResponse(p *entity.ZakatPayment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID.String(),
		HawlCycleID: p.HawlCycleID.String(),
		Amount:      money(p.Amount),
		Recipient:   p.Recipient,
		Category:    string(p.Category),
		Date:        date(p.Date),
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

// ToRecentPaymentResponse converts a recent payment to its response DTO.
func ToRecentPaymentResponse(p entity.RecentPayment) RecentPaymentResponse {
	return RecentPaymentResponse{
		PaymentResponse: ToPaymentResponse(p.Payment),
		Currency:        p.Currency,
	}
}

// ToPaymentCategoriesResponse lists the accepted categories in display order.
func ToPaymentCategoriesResponse() PaymentCategoriesResponse {
	categories := entity.PaymentCategories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return PaymentCategoriesResponse{Categories: names}
}
