package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atharva2604/Kuro/config"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	config.Load()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func pingFrom(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitThrottlesFloods(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	burst := max(config.Get().RateLimitPerMinute/2, 1)

	allowed, throttled := 0, 0
	for i := 0; i < burst*2; i++ {
		switch pingFrom(r, "203.0.113.50:40000") {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			throttled++
		}
	}
	assert.GreaterOrEqual(t, allowed, burst, "the burst capacity passes")
	assert.Positive(t, throttled, "a flood beyond the burst is cut off")

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, pingFrom(r, "203.0.113.51:40000"))
}

func TestRateLimitResponseBody(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	burst := max(config.Get().RateLimitPerMinute/2, 1)
	var last *httptest.ResponseRecorder
	for i := 0; i < burst*2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.60:40000"
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
	}
	require.NotNil(t, last)
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.JSONEq(t, `{"detail": "Too many requests"}`, last.Body.String())
}
