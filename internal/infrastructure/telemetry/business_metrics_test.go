package telemetry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := NewBusinessMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestBusinessMetrics_Recommendations(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordRecommendation(ctx, "Mixed", "Wheat")
	bm.RecordRecommendation(ctx, "Mixed", "Wheat")
	bm.RecordRecommendation(ctx, "N", "Rice")
	bm.RecordPredictionFailure(ctx, "SERVICE_UNAVAILABLE")

	metrics := collect(t, reader)
	recs := metrics["fertilizer_recommendations_total"]
	assert.EqualValues(t, 2, sumFor(t, recs,
		attribute.String("crop_type", "Wheat"), attribute.String("fertilizer_type", "Mixed")))
	assert.EqualValues(t, 1, sumFor(t, recs,
		attribute.String("crop_type", "Rice"), attribute.String("fertilizer_type", "N")))
	assert.EqualValues(t, 1, sumFor(t, metrics["fertilizer_prediction_failures_total"],
		attribute.String("code", "SERVICE_UNAVAILABLE")))
}

func TestBusinessMetrics_LocationSources(t *testing.T) {
	bm, reader := newTestMetrics(t)

	bm.RecordLocationSource(context.Background(), "weather", "live")
	bm.RecordLocationSource(context.Background(), "soil", "fallback")

	m := collect(t, reader)["location_lookup_sources_total"]
	assert.EqualValues(t, 1, sumFor(t, m, attribute.String("branch", "weather"), attribute.String("source", "live")))
	assert.EqualValues(t, 1, sumFor(t, m, attribute.String("branch", "soil"), attribute.String("source", "fallback")))
}

func TestBusinessMetrics_HTTPRequest(t *testing.T) {
	bm, reader := newTestMetrics(t)

	bm.RecordHTTPRequest(context.Background(), http.MethodGet, "/api/soil/history", http.StatusOK, 120*time.Millisecond)

	metrics := collect(t, reader)
	assert.EqualValues(t, 1, sumFor(t, metrics["http_server_requests_total"],
		attribute.String("http.method", "GET"),
		attribute.String("http.route", "/api/soil/history"),
		attribute.Int("http.status_code", 200)))

	hist, ok := metrics["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.EqualValues(t, 1, hist.DataPoints[0].Count)
	assert.InDelta(t, 0.12, hist.DataPoints[0].Sum, 1e-9)
}

func TestBusinessMetrics_PredictionLatency(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordPredictionLatency(ctx, 300*time.Millisecond, "success")
	bm.RecordPredictionLatency(ctx, 500*time.Millisecond, "success")
	bm.RecordPredictionLatency(ctx, 10*time.Second, "SERVICE_UNAVAILABLE")

	hist, ok := collect(t, reader)["fertilizer_prediction_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)

	success := attribute.NewSet(attribute.String("outcome", "success"))
	for _, dp := range hist.DataPoints {
		if dp.Attributes.Equals(&success) {
			assert.EqualValues(t, 2, dp.Count)
			assert.InDelta(t, 0.8, dp.Sum, 1e-9)
		} else {
			assert.EqualValues(t, 1, dp.Count)
			assert.InDelta(t, 10, dp.Sum, 1e-9)
		}
	}
}
