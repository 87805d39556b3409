package middleware

import (
	"crypto/subtle"

	"github.com/GoPolymarket/kylingate/internal/config"
	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const HeaderGatewayKey = "X-Gateway-Key"

// AuthMiddleware checks X-Gateway-Key when cfg.RequireAPIKey is set. The upstream credentials are never exposed to callers.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.RequireAPIKey {
			c.Next()
			return
		}

		apiKey := c.GetHeader(HeaderGatewayKey)
		if apiKey == "" {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing gateway key", nil))
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.APIKey)) != 1 {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "invalid gateway key", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
