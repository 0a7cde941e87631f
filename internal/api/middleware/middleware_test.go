package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/saudadez21/novel-downloader-sub001/internal/config"
)

func setupTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func doGet(router *gin.Engine, remoteAddr, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSAllowAll(t *testing.T) {
	router := setupTestRouter(CORS())

	w := doGet(router, "", "http://reader.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// Without an Origin header CORS stays out of the way.
	w = doGet(router, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSExplicitOrigins(t *testing.T) {
	router := setupTestRouter(CORS("http://reader.example.com"))

	w := doGet(router, "", "http://reader.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://reader.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = doGet(router, "", "http://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestRouter(CORS())

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "http://reader.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRateLimitPerIP(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2, Enabled: true}
	router := setupTestRouter(RateLimit(cfg))

	// Burst capacity for the first client.
	assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.1:1234", "").Code)
	assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.1:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "192.168.1.1:1234", "").Code)

	// A different address gets its own bucket.
	assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.2:1234", "").Code)
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, Enabled: false}
	router := setupTestRouter(RateLimit(cfg))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.1:1234", "").Code)
	}
}

func TestGlobalRateLimit(t *testing.T) {
	cfg := config.RateLimitConfig{GlobalRPS: 1, GlobalBurst: 2, Enabled: true}
	router := setupTestRouter(GlobalRateLimit(cfg))

	// The budget is shared across addresses.
	assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.1:1234", "").Code)
	assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.2:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "192.168.1.3:1234", "").Code)
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(64))
	router.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, body)
	})

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/echo", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, post(`{"q":"ok"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"q":"`+strings.Repeat("x", 128)+`"}`).Code)
}

func TestGlobalRateLimitUnset(t *testing.T) {
	// A zero global budget leaves only the per-IP limiter in play.
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, Enabled: true}
	router := setupTestRouter(GlobalRateLimit(cfg))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.1:1234", "").Code)
	}
}
