package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"boardmart/config"
	"boardmart/internal/auth"
	"boardmart/internal/database"
	"boardmart/internal/domain"
	"boardmart/internal/repository"
	"boardmart/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var routerDBSeq atomic.Int64

func setupRouter(t *testing.T) (*gin.Engine, *repository.SettingRepository, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:routerdb%d?mode=memory&cache=shared", routerDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{
			AccessSecret:  "router-test-access",
			RefreshSecret: "router-test-refresh",
			AccessExpiry:  time.Hour,
			RefreshExpiry: time.Hour,
			Issuer:        "boardmart",
		},
	}
	engine := Setup(cfg, db, payment.NewStubProvider(), nil)
	return engine, repository.NewSettingRepository(db), cfg
}

func doRequest(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestShutdownFlagBlocksMembersNotAdmins(t *testing.T) {
	engine, settings, cfg := setupRouter(t)
	require.NoError(t, settings.Set(domain.SettingSiteShutdown, "true"))

	adminToken, err := auth.GenerateAccessToken(&cfg.JWT, 1, "admin@boardmart.test", domain.RoleAdmin)
	require.NoError(t, err)
	memberToken, err := auth.GenerateAccessToken(&cfg.JWT, 2, "member@boardmart.test", domain.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, doRequest(engine, http.MethodGet, "/api/v1/products", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(engine, http.MethodGet, "/api/v1/me/profile", memberToken).Code)

	// the admin still reaches settings and can flip the flag back off
	assert.Equal(t, http.StatusOK, doRequest(engine, http.MethodGet, "/api/v1/admin/settings", adminToken).Code)

	// gateway callbacks bypass the gate entirely
	webhook := doRequest(engine, http.MethodPost, "/api/v1/webhooks/paystack", "")
	assert.NotEqual(t, http.StatusServiceUnavailable, webhook.Code)

	require.NoError(t, settings.Set(domain.SettingSiteShutdown, "false"))
	assert.Equal(t, http.StatusOK, doRequest(engine, http.MethodGet, "/api/v1/products", "").Code)
}
