package middleware

import (
	"net/http"
	"strings"

	"boardmart/config"
	"boardmart/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired. Handlers read them through GetUserID
// and GetRole rather than touching the keys directly.
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// bearerToken extracts the token from the Authorization header, or "" when
// the header is absent or not a Bearer scheme.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthRequired rejects requests without a valid access token and puts the
// member's identity in the request context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// GetUserID returns the authenticated member's ID, or 0 outside an
// authenticated route.
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		return v.(uint)
	}
	return 0
}

// GetRole returns the authenticated member's role, or "" outside an
// authenticated route.
func GetRole(c *gin.Context) string {
	if v, ok := c.Get(ctxRole); ok {
		return v.(string)
	}
	return ""
}
