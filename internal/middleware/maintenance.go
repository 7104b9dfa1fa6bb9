package middleware

import (
	"net/http"

	"boardmart/config"
	"boardmart/internal/auth"
	"boardmart/internal/domain"
	"boardmart/internal/repository"

	"github.com/gin-gonic/gin"
)

// Maintenance rejects member traffic with 503 while the site_shutdown
// setting is on. The flag lives in system_settings so every instance behind
// the balancer sees the same value. The gate also covers routes that run
// before AuthRequired, so it decodes the bearer token itself; admins pass
// regardless and can flip the flag back off through /admin/settings.
func Maintenance(settings *repository.SettingRepository, jwtCfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !settings.GetBool(domain.SettingSiteShutdown) {
			c.Next()
			return
		}
		if token := bearerToken(c); token != "" {
			if claims, err := auth.ParseAccessToken(jwtCfg, token); err == nil && claims.Role == domain.RoleAdmin {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "site is temporarily unavailable"})
	}
}
