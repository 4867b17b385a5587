// Package location pre-fills soil readings from coordinates using weather,
// soil property and reverse geocoding collaborators.
package location

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/smartfertilizer/backend/internal/infrastructure/config"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Metrics records which source served each branch of a fetch
type Metrics interface {
	RecordLocationSource(ctx context.Context, branch string, source string)
}

// Service implements soil.LocationProvider
type Service struct {
	cfg        config.LocationConfig
	httpClient *http.Client
	metrics    Metrics
	logger     *zap.Logger
}

// Option configures the service
type Option func(*Service)

// WithHTTPClient replaces the HTTP client used for all three collaborators
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.httpClient = c
	}
}

// WithMetrics records branch sources
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a location service
func NewService(cfg config.LocationConfig, logger *zap.Logger, opts ...Option) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	cfg.WeatherURL = strings.TrimRight(cfg.WeatherURL, "/")
	cfg.SoilURL = strings.TrimRight(cfg.SoilURL, "/")
	cfg.GeocodeURL = strings.TrimRight(cfg.GeocodeURL, "/")

	s := &Service{
		cfg:        cfg,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateCoordinates rejects latitudes outside [-90, 90] and longitudes outside [-180, 180]
func ValidateCoordinates(lat, lon float64) error {
	var errs shared.FieldErrors
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		errs.Add("latitude", "Latitude must be between -90 and 90", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		errs.Add("longitude", "Longitude must be between -180 and 180", lon)
	}
	return errs.Err()
}

// FetchByCoordinates queries the three collaborators concurrently and merges
// the results. A failed branch degrades to its fallback; only invalid
// coordinates return an error.
func (s *Service) FetchByCoordinates(ctx context.Context, lat, lon float64) (*soil.LocationEstimate, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	log := logger.WithLogger(ctx, s.logger)

	var (
		weather weatherResult
		soilRes soilResult
		place   string
		placeOK bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weather, err = s.fetchWeather(gctx, lat, lon)
		if err != nil {
			log.Warn("Weather lookup failed, using neutral values", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		soilRes, err = s.fetchSoil(gctx, lat, lon)
		if err != nil {
			log.Warn("Soil property lookup failed, using estimates", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		place, err = s.fetchPlace(gctx, lat, lon)
		if err != nil {
			log.Warn("Reverse geocoding failed", zap.Error(err))
			return nil
		}
		placeOK = place != ""
		return nil
	})
	_ = g.Wait()

	geocoding := soil.SourceLive
	location := place
	if !placeOK {
		geocoding = soil.SourceFallback
		location = weather.Locality
	}

	estimate := &soil.LocationEstimate{
		Latitude:    lat,
		Longitude:   lon,
		Nitrogen:    soilRes.Nitrogen,
		Phosphorus:  soilRes.Phosphorus,
		Potassium:   soilRes.Potassium,
		PH:          soilRes.PH,
		Temperature: weather.Temperature,
		Moisture:    weather.Humidity,
		Location:    location,
		Sources: soil.LocationSources{
			Weather:   weather.Source,
			Soil:      soilRes.Source,
			Geocoding: geocoding,
		},
	}

	if s.metrics != nil {
		s.metrics.RecordLocationSource(ctx, "weather", string(weather.Source))
		s.metrics.RecordLocationSource(ctx, "soil", string(soilRes.Source))
		s.metrics.RecordLocationSource(ctx, "geocoding", string(geocoding))
	}
	return estimate, nil
}

var _ soil.LocationProvider = (*Service)(nil)
