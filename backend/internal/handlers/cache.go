package handlers

import (
	"net/http"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/cache"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	Cache cache.Cache
}

func NewCacheHandler(cacheInstance cache.Cache) *CacheHandler {
	return &CacheHandler{Cache: cacheInstance}
}

// Stats exposes cache hit/miss counters and backend health.
// GET /cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not configured"})
		return
	}

	healthy := true
	if err := h.Cache.Health(); err != nil {
		healthy = false
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":   h.Cache.Stats(),
		"healthy": healthy,
	})
}

// Invalidate drops cached entries matching a pattern.
// POST /cache/invalidate
func (h *CacheHandler) Invalidate(c *gin.Context) {
	var req struct {
		Pattern string `json:"pattern" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.Cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not configured"})
		return
	}

	if err := h.Cache.DeletePattern(req.Pattern); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cache invalidated"})
}
