package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// KeyResolver maps a raw API key to its owning user.
type KeyResolver interface {
	Resolve(ctx context.Context, rawKey string) (uuid.UUID, error)
}

// APIKeyMiddleware authenticates machine callers via the X-Api-Key header.
// Unknown or missing keys get a 401.
func APIKeyMiddleware(resolver KeyResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := c.GetHeader("X-Api-Key")
		if rawKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing api key"})
			return
		}

		userID, err := resolver.Resolve(c.Request.Context(), rawKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}
