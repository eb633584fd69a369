package handlers

import (
	"errors"
	"net/http"

	"pawcare/services/scheduling"
	"pawcare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps typed scheduling errors to HTTP status codes. Unexpected
// errors are logged with full context and sanitized for the client.
func respondError(c *gin.Context, err error) {
	var (
		ve *scheduling.ValidationError
		nf *scheduling.NotFoundError
		fb *scheduling.ForbiddenError
		cf *scheduling.ConflictError
		ex *scheduling.ExternalServiceError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Message})
	case errors.As(err, &fb):
		c.JSON(http.StatusForbidden, gin.H{"error": fb.Message})
	case errors.As(err, &cf):
		c.JSON(http.StatusConflict, gin.H{"error": cf.Message})
	case errors.As(err, &ex):
		utils.GetLogger().Error("payment provider failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
	default:
		utils.GetLogger().Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
