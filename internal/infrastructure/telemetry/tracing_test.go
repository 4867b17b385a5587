package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/infrastructure/telemetry"
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

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)
	id := uuid.New()

	ctx, span := telemetry.StartServiceSpan(context.Background(), "recommendation", "create")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecommendationID, id,
		telemetry.SpanAttrCropType, "Wheat",
		"quantity", 85.5,
		42, "skipped",
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "recommendation.create", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("recommendation_id", id.String()))
	assert.Contains(t, spans[0].Attributes(), attribute.String("crop_type", "Wheat"))
	assert.Contains(t, spans[0].Attributes(), attribute.Float64("quantity", 85.5))
	assert.Len(t, spans[0].Attributes(), 3)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "recommendation", "create")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("predictor down"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "predictor down", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}
