package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck/internal/board/store"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	"go.uber.org/zap"
)

// handleStoreError maps store sentinel errors onto HTTP status codes.
// Anything unexpected (a failed file write, mostly) is a 500.
func handleStoreError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound), errors.Is(err, store.ErrColumnNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrValidation), errors.Is(err, store.ErrNoColumns):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
