package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	return router
}

func serve(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_DefaultRejectsCrossOrigin(t *testing.T) {
	router := newTestRouter(CORS())

	w := serve(router, http.MethodGet, "/test", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodOptions, "/test", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://pos.local"}
	cfg.AllowCredentials = true
	cfg.MaxAge = time.Hour

	t.Run("allows listed origin", func(t *testing.T) {
		w := serve(newTestRouter(CORSWithConfig(cfg)), http.MethodGet, "/test", map[string]string{"Origin": "http://pos.local"})

		assert.Equal(t, "http://pos.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
		assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight for listed origin", func(t *testing.T) {
		w := serve(newTestRouter(CORSWithConfig(cfg)), http.MethodOptions, "/test", map[string]string{"Origin": "http://pos.local"})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("ignores unlisted origin", func(t *testing.T) {
		w := serve(newTestRouter(CORSWithConfig(cfg)), http.MethodGet, "/test", map[string]string{"Origin": "http://other.local"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard never sends credentials", func(t *testing.T) {
		wild := cfg
		wild.AllowOrigins = []string{"*"}
		w := serve(newTestRouter(CORSWithConfig(wild)), http.MethodGet, "/test", map[string]string{"Origin": "http://any.local"})

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(RequestID())

	t.Run("generates an id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", nil)

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagates the caller's id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", map[string]string{RequestIDHeader: "order-42"})

		assert.Equal(t, "order-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "order-42", w.Body.String())
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		long := strings.Repeat("x", MaxRequestIDLength+1)
		w := serve(router, http.MethodGet, "/test", map[string]string{RequestIDHeader: long})

		assert.NotEqual(t, long, w.Header().Get(RequestIDHeader))
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(SecureWithConfig(SecurityConfig{HSTSMaxAge: 600, CSPDirective: "default-src 'none'"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/test", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "max-age=600; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	w = serve(router, http.MethodGet, "/swagger/index.html", nil)
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))

	w = serve(newTestRouter(Secure()), http.MethodGet, "/test", nil)
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
