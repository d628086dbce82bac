package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func newTracedRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(TracingConfig{ServiceName: "restaurant-test", Enabled: true}), SpanAttributes(), SpanErrorMarker())
	router.GET("/api/v1/bill/:id", func(c *gin.Context) {
		switch c.Param("id") {
		case "missing":
			c.Set(ErrorCodeKey, "NOT_FOUND")
			c.Status(http.StatusNotFound)
		case "boom":
			c.Status(http.StatusInternalServerError)
		default:
			c.Status(http.StatusOK)
		}
	})
	return router
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanPerRequest(t *testing.T) {
	sr := setupTestTracer(t)

	w := serve(newTracedRouter(), http.MethodGet, "/api/v1/bill/abc", map[string]string{RequestIDHeader: "req-1"})
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/api/v1/bill/:id")

	id, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-1", id.AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	t.Run("client error records code without failing the span", func(t *testing.T) {
		sr := setupTestTracer(t)
		serve(newTracedRouter(), http.MethodGet, "/api/v1/bill/missing", nil)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		code, ok := spanAttr(spans[0], "error.code")
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", code.AsString())
		status, ok := spanAttr(spans[0], "http.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
	})

	t.Run("server error fails the span", func(t *testing.T) {
		sr := setupTestTracer(t)
		serve(newTracedRouter(), http.MethodGet, "/api/v1/bill/boom", nil)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}
