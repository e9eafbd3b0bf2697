package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/usecase/cycle"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/dto"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/middleware"
)

// HawlController handles Hawl dashboard and cycle endpoints.
type HawlController struct {
	dashboardUseCase  *cycle.GetDashboardUseCase
	listCyclesUseCase *cycle.ListCyclesUseCase
	getCycleUseCase   *cycle.GetCycleUseCase
}

// NewHawlController creates a new Hawl controller instance.
func NewHawlController(
	dashboardUseCase *cycle.GetDashboardUseCase,
	listCyclesUseCase *cycle.ListCyclesUseCase,
	getCycleUseCase *cycle.GetCycleUseCase,
) *HawlController {
	return &HawlController{
		dashboardUseCase:  dashboardUseCase,
		listCyclesUseCase: listCyclesUseCase,
		getCycleUseCase:   getCycleUseCase,
	}
}

// Dashboard handles GET /hawl requests. Reading the dashboard also applies
// any Hawl completions that happened since the last visit.
func (c *HawlController) Dashboard(ctx *gin.Context) {
	// Get user ID from context
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	email, _ := middleware.GetUserEmailFromContext(ctx)

	output, err := c.dashboardUseCase.Execute(ctx.Request.Context(), cycle.GetDashboardInput{
		UserID:    userID,
		UserEmail: email,
		UserName:  middleware.GetUserNameFromContext(ctx),
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDashboardResponse(output))
}

// ListCycles handles GET /hawl/cycles requests.
func (c *HawlController) ListCycles(ctx *gin.Context) {
	// Get user ID from context
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	output, err := c.listCyclesUseCase.Execute(ctx.Request.Context(), cycle.ListCyclesInput{
		UserID: userID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCycleListResponse(output.Cycles))
}

// GetCycle handles GET /hawl/cycles/:id requests.
func (c *HawlController) GetCycle(ctx *gin.Context) {
	// Get user ID from context
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	// Parse cycle ID from URL
	cycleID, ok := parseCycleID(ctx)
	if !ok {
		return
	}

	output, err := c.getCycleUseCase.Execute(ctx.Request.Context(), cycle.GetCycleInput{
		UserID:  userID,
		CycleID: cycleID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCycleDetailResponse(output))
}

// parseCycleID reads the :id path parameter and writes a 400 when it is malformed.
func parseCycleID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid cycle ID format",
			Code:  string(domainerror.ErrCodeInvalidCycleID),
		})
		return uuid.Nil, false
	}
	return id, true
}
