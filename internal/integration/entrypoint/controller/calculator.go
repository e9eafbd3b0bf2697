package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zakat-tracker/backend/internal/application/usecase/calculator"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/zakat"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/dto"
)

// CalculatorController handles the stateless calculator endpoints.
type CalculatorController struct {
	calculateUseCase   *calculator.CalculateUseCase
	convertDateUseCase *calculator.ConvertDateUseCase
}

// NewCalculatorController creates a new calculator controller instance.
func NewCalculatorController(
	calculateUseCase *calculator.CalculateUseCase,
	convertDateUseCase *calculator.ConvertDateUseCase,
) *CalculatorController {
	return &CalculatorController{
		calculateUseCase:   calculateUseCase,
		convertDateUseCase: convertDateUseCase,
	}
}

// Calculate handles POST /calculate requests.
func (c *CalculatorController) Calculate(ctx *gin.Context) {
	var req dto.CalculateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeInvalidSnapshotInput),
		})
		return
	}

	output, err := c.calculateUseCase.Execute(ctx.Request.Context(), calculator.CalculateInput{
		Breakdown:   req.ToBreakdown(),
		GoldPrice:   req.GoldPrice,
		SilverPrice: req.SilverPrice,
		PriceUnit:   zakat.PriceUnit(strings.ToLower(strings.TrimSpace(req.PriceUnit))),
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCalculateResponse(output))
}

// ConvertDate handles GET /hijri/convert requests.
func (c *CalculatorController) ConvertDate(ctx *gin.Context) {
	output, err := c.convertDateUseCase.Execute(ctx.Request.Context(), calculator.ConvertDateInput{
		Date: ctx.Query("date"),
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToConvertDateResponse(output))
}
