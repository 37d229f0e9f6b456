package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newCapturingLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestWithContextRoundTrip(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)

	assert.NotNil(t, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	logger := FromContext(context.Background())

	// falls back to a no-op logger rather than nil
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("route created")
		logger.With(zap.String("route_number", "RT-2026-00001")).Error("close failed")
	})
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")

	logger := FromContext(ctx)

	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("still fine") })
}

func TestContextEnrichment(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()

	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, logger = WithTenantID(ctx, logger, "tenant-1")
	ctx, logger = WithUserID(ctx, logger, "driver-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
	assert.Equal(t, "driver-1", GetUserID(ctx))
	assert.NotNil(t, logger)
}

func TestContextGetters_Missing(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestWithRequestID_Overrides(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, logger, "first-id")
	assert.Equal(t, "first-id", GetRequestID(ctx))

	ctx, _ = WithRequestID(ctx, logger, "second-id")
	assert.Equal(t, "second-id", GetRequestID(ctx))
}

func TestTraceIDs_NoSpan(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestTraceIDs_InvalidSpanContext(t *testing.T) {
	// the noop tracer yields spans with an invalid context
	tp := noop.NewTracerProvider()
	tracer := tp.Tracer("fleet")
	ctx, span := tracer.Start(context.Background(), "close-route")
	defer span.End()

	require.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestWithTraceContext_NoValidSpan(t *testing.T) {
	baseLogger := zap.NewNop()

	// no span at all
	assert.Equal(t, baseLogger, WithTraceContext(context.Background(), baseLogger))

	// invalid span context
	tp := noop.NewTracerProvider()
	ctx, span := tp.Tracer("fleet").Start(context.Background(), "close-route")
	defer span.End()
	assert.Equal(t, baseLogger, WithTraceContext(ctx, baseLogger))
}

func TestL_ReturnsContextLogger(t *testing.T) {
	cl := L(context.Background())

	require.NotNil(t, cl)
	assert.NotNil(t, cl.ctx)
	assert.NotNil(t, cl.logger)
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	baseLogger, err := NewForEnvironment("development")
	require.NoError(t, err)

	cl := WithLogger(context.Background(), baseLogger)

	require.NotNil(t, cl)
	assert.Equal(t, baseLogger, cl.logger)
}

func TestContextLogger_With(t *testing.T) {
	baseLogger, _ := newCapturingLogger()
	ctx := context.Background()
	cl := WithLogger(ctx, baseLogger)

	childCl := cl.With(zap.String("route_number", "RT-2026-00001"))

	require.NotNil(t, childCl)
	assert.Equal(t, ctx, childCl.ctx)
	assert.NotEqual(t, baseLogger, childCl.logger)
}

func TestContextLogger_LevelsAndAccessors(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	assert.NotPanics(t, func() {
		cl.Debug("d")
		cl.Info("i")
		cl.Warn("w")
		cl.Error("e")
		cl.Zap().Info("as zap")
		cl.Sugar().Infof("route %s", "RT-2026-00001")
	})
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}

	assert.NotPanics(t, func() { cl.Info("no logger set") })
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	baseLogger, buf := newCapturingLogger()

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, baseLogger, "req-123")
	ctx, _ = WithTenantID(ctx, baseLogger, "tenant-456")
	ctx, _ = WithUserID(ctx, baseLogger, "driver-789")
	ctx = WithContext(ctx, baseLogger)

	L(ctx).Info("route closed", zap.String("route_number", "RT-2026-00001"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"tenant_id":"tenant-456"`)
	assert.Contains(t, output, `"user_id":"driver-789"`)
	assert.Contains(t, output, `"route_number":"RT-2026-00001"`)
	assert.Contains(t, output, `"msg":"route closed"`)
}

func TestContextLogger_EmptyContextFieldsOmitted(t *testing.T) {
	baseLogger, buf := newCapturingLogger()

	WithLogger(context.Background(), baseLogger).Info("bare entry")

	output := buf.String()
	assert.Contains(t, output, `"msg":"bare entry"`)
	assert.NotContains(t, output, `"request_id":""`)
	assert.NotContains(t, output, `"tenant_id":""`)
	assert.NotContains(t, output, `"user_id":""`)
}
