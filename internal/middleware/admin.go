package middleware

import (
	"net/http"

	"boardmart/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired gates a route group to the ADMIN role. Runs after
// AuthRequired, which puts the role in context.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
