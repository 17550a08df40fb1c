package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pipenotify/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(common.RequestIDKey))
	})
	return r
}

func get(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth([]string{"secret"}))

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong", header: map[string]string{"X-API-Key": "nope"}, want: http.StatusUnauthorized},
		{name: "header", header: map[string]string{"X-API-Key": "secret"}, want: http.StatusOK},
		{name: "bearer", header: map[string]string{"Authorization": "Bearer secret"}, want: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, get(r, tc.header).Code)
		})
	}
}

func TestAuthNoKeysConfiguredRejects(t *testing.T) {
	r := newEngine(Auth(nil))
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"X-API-Key": "x"}).Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := get(r, nil)
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = get(r, map[string]string{"X-Request-ID": "client-id"})
	assert.Equal(t, "client-id", w.Header().Get("X-Request-ID"))

	w = get(r, map[string]string{"X-Request-ID": strings.Repeat("a", 200)})
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	w := get(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// Credentials do not buy a fresh bucket.
	assert.Equal(t, http.StatusTooManyRequests, get(r, map[string]string{"X-API-Key": "k1"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, map[string]string{"Authorization": "Bearer k1"}).Code)
}

func TestRateLimiterIgnoresGuessedKeys(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	r := newEngine(rl.Middleware(), Auth([]string{"secret"}))

	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"X-API-Key": "guess-0"}).Code)
	for i := 1; i <= 100; i++ {
		w := get(r, map[string]string{"X-API-Key": fmt.Sprintf("guess-%d", i)})
		require.Equal(t, http.StatusTooManyRequests, w.Code, "attempt %d", i)
	}

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Len(t, rl.limiters, 1)
}

func TestCORSAllowAll(t *testing.T) {
	r := newEngine(CORS([]string{"*"}, []string{"GET"}, []string{"X-API-Key"}))

	w := get(r, map[string]string{"Origin": "https://example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
