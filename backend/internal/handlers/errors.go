package handlers

import (
	"errors"
	"net/http"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// handleStoreError maps store and database failures to HTTP statuses.
func handleStoreError(c *gin.Context, err error) {
	var validationErr *store.ValidationError
	var remoteErr *store.RemoteError

	switch {
	case errors.Is(err, store.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": remoteErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
	}
}

func handleNotFoundError(c *gin.Context, err error, label string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": label + " not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
}
