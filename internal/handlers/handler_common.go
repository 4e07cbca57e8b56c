package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/middleware"
)

// respondError translates the service error taxonomy into HTTP statuses.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrAlreadyDone),
		errors.Is(err, apperrors.ErrNotPaid),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &appErr):
		logger.Error("Request failed", slog.String("error", err.Error()))
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	default:
		logger.Error("Request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondBindError renders request binding failures, listing the offending
// fields when the validator produced them.
func respondBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, len(validationErrs))
		for i, fe := range validationErrs {
			fields[i] = fe.Field()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}
