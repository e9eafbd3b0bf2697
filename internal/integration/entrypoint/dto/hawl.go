package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/application/usecase/cycle"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	"github.com/zakat-tracker/backend/internal/domain/hawl"
)

// HawlStateResponse describes the user's active cycle.
type HawlStateResponse struct {
	Status           string             `json:"status"`
	CycleID          *string            `json:"cycle_id"`
	HawlStartDate    *string            `json:"hawl_start_date"`
	HawlStartHijri   *HijriDateResponse `json:"hawl_start_hijri"`
	HawlDueDate      *string            `json:"hawl_due_date"`
	HawlDueHijri     *HijriDateResponse `json:"hawl_due_hijri"`
	DaysElapsed      int                `json:"days_elapsed"`
	DaysRemaining    int                `json:"days_remaining"`
	TotalDays        int                `json:"total_days"`
	ProgressPercent  int                `json:"progress_percent"`
	ZakatAmount      *string            `json:"zakat_amount"`
	LastSnapshotDate *string            `json:"last_snapshot_date"`
	IsStale          bool               `json:"is_stale"`
}

// OutstandingCycleResponse is one due cycle in the outstanding view.
type OutstandingCycleResponse struct {
	CycleID       string `json:"cycle_id"`
	HawlStartDate string `json:"hawl_start_date"`
	HawlDueDate   string `json:"hawl_due_date"`
	ZakatAmount   string `json:"zakat_amount"`
	TotalPaid     string `json:"total_paid"`
	PaymentCount  int    `json:"payment_count"`
	Remaining     string `json:"remaining"`
	Currency      string `json:"currency"`
}

// OutstandingResponse is the combined unpaid obligation.
type OutstandingResponse struct {
	HasOutstanding   bool                       `json:"has_outstanding"`
	TotalOutstanding string                     `json:"total_outstanding"`
	Cycles           []OutstandingCycleResponse `json:"cycles"`
}

// DashboardResponse represents the response of GET /hawl.
type DashboardResponse struct {
	State          HawlStateResponse       `json:"state"`
	Outstanding    OutstandingResponse     `json:"outstanding"`
	LatestSnapshot *SnapshotResponse       `json:"latest_snapshot"`
	RecentPayments []RecentPaymentResponse `json:"recent_payments"`
	Completed      []CycleResponse         `json:"completed"`
	StorageReady   bool                    `json:"storage_ready"`
}

// CycleResponse represents a single Hawl cycle in API responses.
type CycleResponse struct {
	ID              string            `json:"id"`
	Status          string            `json:"status"`
	HawlStartDate   string            `json:"hawl_start_date"`
	HawlStartHijri  HijriDateResponse `json:"hawl_start_hijri"`
	HawlDueDate     string            `json:"hawl_due_date"`
	HawlDueHijri    HijriDateResponse `json:"hawl_due_hijri"`
	EndDate         *string           `json:"end_date"`
	StartSnapshotID string            `json:"start_snapshot_id"`
	ResetSnapshotID *string           `json:"reset_snapshot_id,omitempty"`
	ZakatAmount     *string           `json:"zakat_amount"`
	WealthAtDue     *string           `json:"wealth_at_due"`
	TotalPaid       string            `json:"total_paid"`
	PaymentCount    int               `json:"payment_count"`
	Currency        string            `json:"currency"`
	Notes           *string           `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CycleListResponse represents the response for listing cycles.
type CycleListResponse struct {
	Cycles []CycleResponse `json:"cycles"`
}

// CycleDetailResponse is a cycle with its payments.
type CycleDetailResponse struct {
	Cycle     CycleResponse     `json:"cycle"`
	Payments  []PaymentResponse `json:"payments"`
	Remaining string            `json:"remaining"`
	FullyPaid bool              `json:"fully_paid"`
}

// ToCycleResponse converts a domain HawlCycle entity to a CycleResponse DTO.
func ToCycleResponse(c *entity.HawlCycle, totalPaid decimal.Decimal, paymentCount int) CycleResponse {
	response := CycleResponse{
		ID:              c.ID.String(),
		Status:          string(c.Status),
		HawlStartDate:   date(c.HawlStartDate),
		HawlStartHijri:  ToHijriDateResponse(c.HawlStartHijri),
		HawlDueDate:     date(c.HawlDueDate),
		HawlDueHijri:    ToHijriDateResponse(c.HawlDueHijri),
		EndDate:         nullDate(c.EndDate),
		StartSnapshotID: c.StartSnapshotID.String(),
		ZakatAmount:     nullMoney(c.ZakatAmount),
		WealthAtDue:     nullMoney(c.WealthAtDue),
		TotalPaid:       money(totalPaid),
		PaymentCount:    paymentCount,
		Currency:        c.Currency,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.ResetSnapshotID != nil {
		id := c.ResetSnapshotID.String()
		response.ResetSnapshotID = &id
	}
	return response
}

// ToCycleListResponse converts cycles with payment totals to a CycleListResponse DTO.
func ToCycleListResponse(cycles []entity.CycleWithPayments) CycleListResponse {
	items := make([]CycleResponse, len(cycles))
	for i, c := range cycles {
		items[i] = ToCycleResponse(c.Cycle, c.TotalPaid, c.PaymentCount)
	}
	return CycleListResponse{Cycles: items}
}

// ToCycleDetailResponse converts the GetCycle output to its response DTO.
func ToCycleDetailResponse(output *cycle.GetCycleOutput) CycleDetailResponse {
	payments := make([]PaymentResponse, len(output.Payments))
	for i, p := range output.Payments {
		payments[i] = ToPaymentResponse(p)
	}
	return CycleDetailResponse{
		Cycle:     ToCycleResponse(output.Cycle, output.TotalPaid, output.PaymentCount),
		Payments:  payments,
		Remaining: money(output.Remaining),
		FullyPaid: output.FullyPaid,
	}
}

// ToHawlStateResponse converts a computed state to its response DTO.
func ToHawlStateResponse(s hawl.State) HawlStateResponse {
	response := HawlStateResponse{
		Status:           string(s.Status),
		HawlStartDate:    nullDate(s.HawlStartDate),
		HawlDueDate:      nullDate(s.HawlDueDate),
		DaysElapsed:      s.DaysElapsed,
		DaysRemaining:    s.DaysRemaining,
		TotalDays:        s.TotalDays,
		ProgressPercent:  s.ProgressPercent,
		ZakatAmount:      nullMoney(s.ZakatAmount),
		LastSnapshotDate: nullDate(s.LastSnapshotDate),
		IsStale:          s.IsStale,
	}
	if s.CycleID != nil {
		id := s.CycleID.String()
		response.CycleID = &id
	}
	if s.HawlStartHijri != nil {
		h := ToHijriDateResponse(*s.HawlStartHijri)
		response.HawlStartHijri = &h
	}
	if s.HawlDueHijri != nil {
		h := ToHijriDateResponse(*s.HawlDueHijri)
		response.HawlDueHijri = &h
	}
	return response
}

// ToOutstandingResponse converts the outstanding view to its response DTO.
func ToOutstandingResponse(o hawl.Outstanding) OutstandingResponse {
	cycles := make([]OutstandingCycleResponse, len(o.Cycles))
	for i, oc := range o.Cycles {
		cycles[i] = OutstandingCycleResponse{
			CycleID:       oc.Cycle.ID.String(),
			HawlStartDate: date(oc.Cycle.HawlStartDate),
			HawlDueDate:   date(oc.Cycle.HawlDueDate),
			ZakatAmount:   money(oc.ZakatAmount),
			TotalPaid:     money(oc.TotalPaid),
			PaymentCount:  oc.PaymentCount,
			Remaining:     money(oc.Remaining),
			Currency:      oc.Cycle.Currency,
		}
	}
	return OutstandingResponse{
		HasOutstanding:   o.HasOutstanding(),
		TotalOutstanding: money(o.TotalOutstanding),
		Cycles:           cycles,
	}
}

// ToDashboardResponse converts the dashboard output to its response DTO.
func ToDashboardResponse(output *cycle.GetDashboardOutput) DashboardResponse {
	response := DashboardResponse{
		State:          ToHawlStateResponse(output.State),
		Outstanding:    ToOutstandingResponse(output.Outstanding),
		RecentPayments: make([]RecentPaymentResponse, len(output.RecentPayments)),
		Completed:      make([]CycleResponse, len(output.Completed)),
		StorageReady:   output.StorageReady,
	}
	if output.LatestSnapshot != nil {
		s := ToSnapshotResponse(output.LatestSnapshot)
		response.LatestSnapshot = &s
	}
	for i, p := range output.RecentPayments {
		response.RecentPayments[i] = ToRecentPaymentResponse(p)
	}
	for i, c := range output.Completed {
		response.Completed[i] = ToCycleResponse(c, decimal.Zero, 0)
	}
	return response
}
