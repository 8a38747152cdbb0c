package api

import (
	"errors"
	"net/http"

	"skyvault/drive-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// abortStoreErr maps a store error onto an HTTP response. Gateway failures
// show up as a generic 500, everything else carries its own message.
func abortStoreErr(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, store.ErrNotAuthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Not authenticated",
			"requestID": requestID,
		})
	case errors.Is(err, store.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File not found. It either doesn't exist or you don't own it",
			"requestID": requestID,
		})
	case errors.Is(err, store.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "No user with that email or id",
			"requestID": requestID,
		})
	case errors.Is(err, store.ErrAlreadyShared):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "File is already shared with that user",
			"requestID": requestID,
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Store operation failed", zap.Error(err), zap.String("requestID", requestID))
	}
}
