package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/application/usecase/snapshot"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	"github.com/zakat-tracker/backend/internal/domain/zakat"
)

// BreakdownRequest is the asset breakdown shared by snapshots and the calculator.
type BreakdownRequest struct {
	CashAndBank      decimal.Decimal `json:"cash_and_bank"`
	Gold             decimal.Decimal `json:"gold"`
	Silver           decimal.Decimal `json:"silver"`
	BusinessAssets   decimal.Decimal `json:"business_assets"`
	Stocks           decimal.Decimal `json:"stocks"`
	OtherInvestments decimal.Decimal `json:"other_investments"`
	Receivables      decimal.Decimal `json:"receivables"`
	Liabilities      decimal.Decimal `json:"liabilities"`
}

// ToBreakdown converts the request to a domain breakdown.
func (r BreakdownRequest) ToBreakdown() zakat.Breakdown {
	return zakat.Breakdown{
		CashAndBank:      r.CashAndBank,
		Gold:             r.Gold,
		Silver:           r.Silver,
		BusinessAssets:   r.BusinessAssets,
		Stocks:           r.Stocks,
		OtherInvestments: r.OtherInvestments,
		Receivables:      r.Receivables,
		Liabilities:      r.Liabilities,
	}
}

// CreateSnapshotRequest represents the request body for logging wealth.
type CreateSnapshotRequest struct {
	BreakdownRequest
	GoldPrice    *decimal.Decimal `json:"gold_price,omitempty"`
	SilverPrice  *decimal.Decimal `json:"silver_price,omitempty"`
	PriceUnit    string           `json:"price_unit,omitempty"`
	GoldVori     *decimal.Decimal `json:"gold_vori,omitempty"`
	SilverVori   *decimal.Decimal `json:"silver_vori,omitempty"`
	SnapshotDate string           `json:"snapshot_date"`
	Currency     string           `json:"currency,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// SnapshotResponse represents a single snapshot in API responses.
type SnapshotResponse struct {
	ID                 string    `json:"id"`
	SnapshotDate       string    `json:"snapshot_date"`
	CashAndBank        string    `json:"cash_and_bank"`
	Gold               string    `json:"gold"`
	Silver             string    `json:"silver"`
	BusinessAssets     string    `json:"business_assets"`
	Stocks             string    `json:"stocks"`
	OtherInvestments   string    `json:"other_investments"`
	Receivables        string    `json:"receivables"`
	Liabilities        string    `json:"liabilities"`
	GoldPricePerVori   *string   `json:"gold_price_per_vori"`
	SilverPricePerVori *string   `json:"silver_price_per_vori"`
	GoldVori           *string   `json:"gold_vori"`
	SilverVori         *string   `json:"silver_vori"`
	TotalWealth        string    `json:"total_wealth"`
	NisabThreshold     string    `json:"nisab_threshold"`
	NisabMet           bool      `json:"nisab_met"`
	Currency           string    `json:"currency"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// CreateSnapshotResponse is returned after ingestion.
type CreateSnapshotResponse struct {
	Snapshot  SnapshotResponse `json:"snapshot"`
	Action    string           `json:"action"`
	Cycle     *CycleResponse   `json:"cycle,omitempty"`
	Completed []CycleResponse  `json:"completed"`
}

// SnapshotListResponse represents the response for listing snapshots.
type SnapshotListResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
}

// ToSnapshotResponse converts a domain AssetSnapshot entity to a SnapshotResponse DTO.
func ToSnapshotResponse(s *entity.AssetSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:                 s.ID.String(),
		SnapshotDate:       date(s.SnapshotDate),
		CashAndBank:        money(s.Breakdown.CashAndBank),
		Gold:               money(s.Breakdown.Gold),
		Silver:             money(s.Breakdown.Silver),
		BusinessAssets:     money(s.Breakdown.BusinessAssets),
		Stocks:             money(s.Breakdown.Stocks),
		OtherInvestments:   money(s.Breakdown.OtherInvestments),
		Receivables:        money(s.Breakdown.Receivables),
		Liabilities:        money(s.Breakdown.Liabilities),
		GoldPricePerVori:   nullMoney(s.GoldPricePerVori),
		SilverPricePerVori: nullMoney(s.SilverPricePerVori),
		GoldVori:           nullQuantity(s.GoldVori),
		SilverVori:         nullQuantity(s.SilverVori),
		TotalWealth:        money(s.TotalWealth),
		NisabThreshold:     money(s.NisabThreshold),
		NisabMet:           s.NisabMet,
		Currency:           s.Currency,
		Notes:              s.Notes,
		CreatedAt:          s.CreatedAt,
	}
}

// ToCreateSnapshotResponse converts the ingestion output to its response DTO.
func ToCreateSnapshotResponse(output *snapshot.CreateSnapshotOutput) CreateSnapshotResponse {
	response := CreateSnapshotResponse{
		Snapshot:  ToSnapshotResponse(output.Snapshot),
		Action:    string(output.Action),
		Completed: make([]CycleResponse, len(output.Completed)),
	}
	if output.Cycle != nil {
		c := ToCycleResponse(output.Cycle, decimal.Zero, 0)
		response.Cycle = &c
	}
	for i, c := range output.Completed {
		response.Completed[i] = ToCycleResponse(c, decimal.Zero, 0)
	}
	return response
}

// ToSnapshotListResponse converts snapshots to a SnapshotListResponse DTO.
func ToSnapshotListResponse(snapshots []*entity.AssetSnapshot) SnapshotListResponse {
	items := make([]SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		items[i] = ToSnapshotResponse(s)
	}
	return SnapshotListResponse{Snapshots: items}
}
