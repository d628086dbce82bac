package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

// contextWithSpan returns a context carrying a valid remote span context
func contextWithSpan() context.Context {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), spanCtx)
}

func TestWithContext(t *testing.T) {
	base, _ := newBufferLogger()
	ctx := WithContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("discarded") })
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(ctx))
}

func TestWithRequestID(t *testing.T) {
	base, buf := newBufferLogger()

	ctx, enriched := WithRequestID(context.Background(), base, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	enriched.Info("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(contextWithSpan()))
}

func TestL_UsesLoggerFromContext(t *testing.T) {
	base, buf := newBufferLogger()
	ctx, _ := WithRequestID(context.Background(), base, "req-9")

	L(ctx).Info("Bill created", zap.String("bill_id", "b-1"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-9"`)
	assert.Contains(t, output, `"bill_id":"b-1"`)
	assert.Contains(t, output, `"msg":"Bill created"`)
	assert.NotContains(t, output, "trace_id")
}

func TestL_AddsTraceFields(t *testing.T) {
	base, buf := newBufferLogger()
	ctx := WithContext(contextWithSpan(), base)

	L(ctx).Warn("Stock low")

	output := buf.String()
	assert.Contains(t, output, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, output, `"span_id":"00f067aa0ba902b7"`)
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	inCtx, ctxBuf := newBufferLogger()
	provided, providedBuf := newBufferLogger()
	ctx := WithContext(context.Background(), inCtx)

	WithLogger(ctx, provided).Error("boom")

	assert.Empty(t, ctxBuf.String())
	assert.Contains(t, providedBuf.String(), `"msg":"boom"`)
}

func TestContextLogger_With(t *testing.T) {
	base, buf := newBufferLogger()
	ctx := WithContext(context.Background(), base)

	L(ctx).With(zap.String("menu_item_id", "m-1")).Debug("cache miss")

	assert.Contains(t, buf.String(), `"menu_item_id":"m-1"`)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() {
		cl.Info("nothing")
		_ = cl.Zap()
	})
}
