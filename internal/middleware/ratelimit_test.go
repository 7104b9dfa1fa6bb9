package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterCapsPerKey(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("ip:1.2.3.4"))
	}
	assert.False(t, l.Allow("ip:1.2.3.4"))
	assert.True(t, l.Allow("ip:5.6.7.8"), "other callers keep their own window")
}

func TestRateLimiterWindowResets(t *testing.T) {
	l := NewRateLimiter(1, 10*time.Millisecond)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	time.Sleep(15 * time.Millisecond)
	assert.True(t, l.Allow("k"))
}

func TestRateLimitKeysOnAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limited := RateLimit(NewRateLimiter(1, time.Minute))

	engine := gin.New()
	engine.GET("/account", func(c *gin.Context) {
		c.Set(ctxUserID, uint(7))
	}, limited, func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/public", limited, func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(path string) int {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("/account"))
	assert.Equal(t, http.StatusTooManyRequests, get("/account"))

	// the signed-in member's budget is separate from the shared IP budget
	assert.Equal(t, http.StatusOK, get("/public"))
	assert.Equal(t, http.StatusTooManyRequests, get("/public"))
}
