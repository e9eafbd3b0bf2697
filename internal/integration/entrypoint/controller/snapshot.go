package controller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zakat-tracker/backend/internal/application/usecase/snapshot"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/zakat"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/dto"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/middleware"
)

// SnapshotController handles wealth snapshot endpoints.
type SnapshotController struct {
	createUseCase *snapshot.CreateSnapshotUseCase
	listUseCase   *snapshot.ListSnapshotsUseCase
}

// NewSnapshotController creates a new snapshot controller instance.
func NewSnapshotController(
	createUseCase *snapshot.CreateSnapshotUseCase,
	listUseCase *snapshot.ListSnapshotsUseCase,
) *SnapshotController {
	return &SnapshotController{
		createUseCase: createUseCase,
		listUseCase:   listUseCase,
	}
}

// Create handles POST /snapshots requests.
func (c *SnapshotController) Create(ctx *gin.Context) {
	// Get user ID from context
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	email, _ := middleware.GetUserEmailFromContext(ctx)

	// Parse request body
	var req dto.CreateSnapshotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeInvalidSnapshotInput),
		})
		return
	}

	// Parse snapshot date
	var snapshotDate *time.Time
	if raw := strings.TrimSpace(req.SnapshotDate); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:  "Invalid input",
				Code:   string(domainerror.ErrCodeInvalidSnapshotInput),
				Fields: map[string]string{"snapshot_date": "Date must be in YYYY-MM-DD format"},
			})
			return
		}
		snapshotDate = &t
	}

	// Build input
	input := snapshot.CreateSnapshotInput{
		UserID:       userID,
		UserEmail:    email,
		UserName:     middleware.GetUserNameFromContext(ctx),
		Breakdown:    req.ToBreakdown(),
		GoldPrice:    req.GoldPrice,
		SilverPrice:  req.SilverPrice,
		PriceUnit:    zakat.PriceUnit(strings.ToLower(strings.TrimSpace(req.PriceUnit))),
		GoldVori:     req.GoldVori,
		SilverVori:   req.SilverVori,
		SnapshotDate: snapshotDate,
		Currency:     strings.ToUpper(strings.TrimSpace(req.Currency)),
		Notes:        req.Notes,
	}

	// Execute use case
	output, err := c.createUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCreateSnapshotResponse(output))
}

// List handles GET /snapshots requests.
func (c *SnapshotController) List(ctx *gin.Context) {
	// Get user ID from context
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	// Parse limit
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:  "Invalid input",
				Code:   string(domainerror.ErrCodeInvalidSnapshotInput),
				Fields: map[string]string{"limit": "Limit must be a non-negative integer"},
			})
			return
		}
		limit = n
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), snapshot.ListSnapshotsInput{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSnapshotListResponse(output.Snapshots))
}
