package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/smartfertilizer/backend/internal/infrastructure/location"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BusinessMetrics counts recommendation and location outcomes and times predictor calls and HTTP requests
type BusinessMetrics struct {
	recommendations    metric.Int64Counter
	predictionFailures metric.Int64Counter
	predictionLatency  metric.Float64Histogram
	locationSources    metric.Int64Counter
	httpRequests       metric.Int64Counter
	httpDuration       metric.Float64Histogram
}

// NewBusinessMetrics registers instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	var err error
	if bm.recommendations, err = meter.Int64Counter(
		"fertilizer_recommendations_total",
		metric.WithDescription("Recommendations stored, by fertilizer and crop type"),
		metric.WithUnit("{recommendations}"),
	); err != nil {
		return nil, err
	}
	if bm.predictionFailures, err = meter.Int64Counter(
		"fertilizer_prediction_failures_total",
		metric.WithDescription("Prediction calls that failed, by error code"),
		metric.WithUnit("{failures}"),
	); err != nil {
		return nil, err
	}
	if bm.predictionLatency, err = meter.Float64Histogram(
		"fertilizer_prediction_duration_seconds",
		metric.WithDescription("Prediction service call latency, by outcome"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	); err != nil {
		return nil, err
	}
	if bm.locationSources, err = meter.Int64Counter(
		"location_lookup_sources_total",
		metric.WithDescription("Location pre-fill branches, by branch and source"),
		metric.WithUnit("{lookups}"),
	); err != nil {
		return nil, err
	}
	if bm.httpRequests, err = meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{requests}"),
	); err != nil {
		return nil, err
	}
	if bm.httpDuration, err = meter.Float64Histogram(
		"http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordRecommendation counts a stored recommendation
func (bm *BusinessMetrics) RecordRecommendation(ctx context.Context, fertilizerType, cropType string) {
	bm.recommendations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("fertilizer_type", fertilizerType),
		attribute.String("crop_type", cropType),
	))
}

// RecordPredictionFailure counts a failed prediction call
func (bm *BusinessMetrics) RecordPredictionFailure(ctx context.Context, code string) {
	bm.predictionFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordPredictionLatency times one predictor call. outcome is "success" or the error code.
func (bm *BusinessMetrics) RecordPredictionLatency(ctx context.Context, d time.Duration, outcome string) {
	bm.predictionLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordLocationSource counts which source served a location branch
func (bm *BusinessMetrics) RecordLocationSource(ctx context.Context, branch, source string) {
	bm.locationSources.Add(ctx, 1, metric.WithAttributes(
		attribute.String("branch", branch),
		attribute.String("source", source),
	))
}

// RecordHTTPRequest counts and times one request. route is the matched pattern, not the raw path.
func (bm *BusinessMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	bm.httpRequests.Add(ctx, 1, attrs)
	bm.httpDuration.Record(ctx, d.Seconds(), attrs)
}

var _ location.Metrics = (*BusinessMetrics)(nil)
