package soil

import (
	"context"
)

// Source describes where an estimated value came from
type Source string

const (
	SourceLive      Source = "live"      // measured by the upstream service
	SourceEstimated Source = "estimated" // coordinate-seeded estimate
	SourceFallback  Source = "fallback"  // fixed neutral value after an upstream failure
)

// LocationSources records the provenance of each part of a LocationEstimate
type LocationSources struct {
	Weather   Source `json:"weather"`
	Soil      Source `json:"soil"`
	Geocoding Source `json:"geocoding"`
}

// LocationEstimate pre-fills a soil reading from coordinates
type LocationEstimate struct {
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Nitrogen    float64         `json:"nitrogen"`
	Phosphorus  float64         `json:"phosphorus"`
	Potassium   float64         `json:"potassium"`
	PH          float64         `json:"ph"`
	Temperature float64         `json:"temperature"`
	Moisture    float64         `json:"moisture"`
	Location    string          `json:"location"`
	Sources     LocationSources `json:"sources"`
}

// LocationProvider fetches coordinate-based soil and weather estimates
type LocationProvider interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (*LocationEstimate, error)
}
