package handlers

import (
	"net/http"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/middleware"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type APIKeyHandler struct {
	keyService services.APIKeyService
}

func NewAPIKeyHandler(keyService services.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keyService: keyService}
}

// CreateKey mints a key and returns the raw secret once.
func (h *APIKeyHandler) CreateKey(c *gin.Context) {
	var keyInput struct {
		Label string `json:"label" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&keyInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	key, rawKey, err := h.keyService.CreateKey(c.Request.Context(), userID, keyInput.Label)
	if err != nil {
		handleNotFoundError(c, err, "api key")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      key.ID,
		"label":   key.Label,
		"api_key": rawKey,
	})
}

func (h *APIKeyHandler) ListKeys(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	keys, err := h.keyService.ListKeys(c.Request.Context(), userID)
	if err != nil {
		handleNotFoundError(c, err, "api key")
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (h *APIKeyHandler) RevokeKey(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id := uuid.FromStringOrNil(c.Param("id"))

	if err := h.keyService.RevokeKey(c.Request.Context(), id, userID); err != nil {
		handleNotFoundError(c, err, "api key")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
