package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blockpi/backend/internal/admin"
	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireAdmin(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret"}
	r := gin.New()
	r.GET("/admin", RequireAdmin(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin_username"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := admin.IssueToken("s3cret", "ops", nil, time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	r := gin.New()
	r.POST("/simulate", RateLimit(cache.New(rdb, time.Minute), "simulate", time.Second), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/simulate", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/simulate", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestWebSocketOriginAllowed(t *testing.T) {
	dev := &config.Config{Environment: "development"}
	assert.True(t, WebSocketOriginAllowed(dev, ""))
	assert.True(t, WebSocketOriginAllowed(dev, "http://localhost:3000"))
	assert.False(t, WebSocketOriginAllowed(dev, "https://evil.example"))

	prod := &config.Config{Environment: "production", FrontendURL: "https://blockpi.example"}
	assert.True(t, WebSocketOriginAllowed(prod, "https://blockpi.example"))
	assert.False(t, WebSocketOriginAllowed(prod, "http://localhost:3000"))
}
