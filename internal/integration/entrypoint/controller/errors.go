package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/dto"
)

// handleError maps use case errors to HTTP responses.
func handleError(ctx *gin.Context, err error) {
	var validationErr *domainerror.ValidationError
	if errors.As(err, &validationErr) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "Invalid input",
			Code:   validationErr.Code,
			Fields: validationErr.Fields,
		})
		return
	}

	var hawlErr *domainerror.HawlError
	if errors.As(err, &hawlErr) {
		ctx.JSON(statusForHawlError(hawlErr.Code), dto.ErrorResponse{
			Error: hawlErr.Message,
			Code:  string(hawlErr.Code),
		})
		return
	}

	switch {
	case errors.Is(err, domainerror.ErrPaymentNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Payment not found",
			Code:  string(domainerror.ErrCodePaymentNotFound),
		})
	case errors.Is(err, domainerror.ErrSnapshotNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Snapshot not found",
			Code:  string(domainerror.ErrCodeSnapshotNotFound),
		})
	case errors.Is(err, domainerror.ErrHawlCycleNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Hawl cycle not found",
			Code:  string(domainerror.ErrCodeHawlCycleNotFound),
		})
	case errors.Is(err, domainerror.ErrTrackingCycleExists):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: "A tracking cycle already exists",
			Code:  string(domainerror.ErrCodeTrackingCycleExists),
		})
	case errors.Is(err, domainerror.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Invalid Hawl transition",
			Code:    string(domainerror.ErrCodeInvalidTransition),
			Details: err.Error(),
		})
	case errors.Is(err, domainerror.ErrStorageUnconfigured):
		ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error: "Storage is not configured",
			Code:  string(domainerror.ErrCodeStorageUnconfigured),
		})
	default:
		slog.Error("Unhandled request error",
			"error", err,
			"path", ctx.FullPath(),
		)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  string(domainerror.ErrCodeInternal),
		})
	}
}

// statusForHawlError maps Hawl error codes to HTTP status codes.
func statusForHawlError(code domainerror.HawlErrorCode) int {
	switch code {
	case domainerror.ErrCodeHawlCycleNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeInvalidCycleID:
		return http.StatusBadRequest
	case domainerror.ErrCodeUserBusy:
		return http.StatusConflict
	case domainerror.ErrCodeInvalidTransition, domainerror.ErrCodeTrackingCycleExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// unauthorized writes the response used when the auth middleware did not run.
func unauthorized(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "User not authenticated",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}
