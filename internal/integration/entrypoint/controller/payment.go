package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/usecase/payment"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/dto"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/middleware"
)

// PaymentController handles Zakat payment endpoints.
type PaymentController struct {
	addUseCase    *payment.AddPaymentUseCase
	deleteUseCase *payment.DeletePaymentUseCase
}

// NewPaymentController creates a new payment controller instance.
func NewPaymentController(
	addUseCase *payment.AddPaymentUseCase,
	deleteUseCase *payment.DeletePaymentUseCase,
) *PaymentController {
	return &PaymentController{
		addUseCase:    addUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// Categories handles GET /hawl/payment-categories requests.
func (c *PaymentController) Categories(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.ToPaymentCategoriesResponse())
}

// Create handles POST /hawl/cycles/:id/payments requests.
func (c *PaymentController) Create(ctx *gin.Context) {
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

	// Parse request body
	var req dto.CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeInvalidPayment),
		})
		return
	}

	// Parse payment date
	var date *time.Time
	if raw := strings.TrimSpace(req.Date); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:  "Invalid input",
				Code:   string(domainerror.ErrCodeInvalidPayment),
				Fields: map[string]string{"date": "Date must be in YYYY-MM-DD format"},
			})
			return
		}
		date = &t
	}

	output, err := c.addUseCase.Execute(ctx.Request.Context(), payment.AddPaymentInput{
		UserID:    userID,
		CycleID:   cycleID,
		Amount:    req.Amount,
		Recipient: req.Recipient,
		Category:  entity.PaymentCategory(strings.TrimSpace(req.Category)),
		Date:      date,
		Notes:     req.Notes,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	p := dto.ToPaymentResponse(output.Payment)
	ctx.JSON(http.StatusCreated, dto.PaymentMutationResponse{
		Payment:   &p,
		Cycle:     dto.ToCycleResponse(output.Cycle, output.TotalPaid, 0),
		TotalPaid: output.TotalPaid.StringFixed(2),
		Action:    string(output.Action),
	})
}

// Delete handles DELETE /hawl/cycles/:id/payments/:payment_id requests.
func (c *PaymentController) Delete(ctx *gin.Context) {
	// Get user ID from context
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	// Parse IDs from URL
	cycleID, ok := parseCycleID(ctx)
	if !ok {
		return
	}
	paymentID, err := uuid.Parse(ctx.Param("payment_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid payment ID format",
			Code:  string(domainerror.ErrCodeInvalidPayment),
		})
		return
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), payment.DeletePaymentInput{
		UserID:    userID,
		CycleID:   cycleID,
		PaymentID: paymentID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.PaymentMutationResponse{
		Cycle:     dto.ToCycleResponse(output.Cycle, output.TotalPaid, 0),
		TotalPaid: output.TotalPaid.StringFixed(2),
		Action:    string(output.Action),
	})
}
