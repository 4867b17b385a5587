package location

import (
	"math"

	"github.com/shopspring/decimal"
)

// Seed is the per-property salt and output range of a stable estimate
type Seed struct {
	Salt  float64
	Base  float64
	Range float64
}

// Seeds for every estimated property
var (
	SeedTemperature = Seed{Salt: 1, Base: 20, Range: 10}
	SeedHumidity    = Seed{Salt: 2, Base: 50, Range: 20}
	SeedNitrogen    = Seed{Salt: 3, Base: 40, Range: 20}
	SeedPH          = Seed{Salt: 4, Base: 6.0, Range: 1.5}
	SeedPhosphorus  = Seed{Salt: 5, Base: 30, Range: 15}
	SeedPotassium   = Seed{Salt: 6, Base: 35, Range: 15}
)

// Fixed neutral weather used when the weather call fails
const (
	FallbackTemperature = 25.0
	FallbackHumidity    = 60.0
	FallbackLocality    = "Unknown Location"
)

// StableValue returns base + mod(|sin(lat*12.9898 + lon*78.233 + salt) * 43758.5453|, range).
// The same coordinates always give the same value.
func StableValue(lat, lon float64, s Seed) float64 {
	hash := math.Abs(math.Sin(lat*12.9898+lon*78.233+s.Salt) * 43758.5453)
	return s.Base + math.Mod(hash, s.Range)
}

// Estimate is StableValue rounded to one decimal
func Estimate(lat, lon float64, s Seed) float64 {
	return round1(StableValue(lat, lon, s))
}

func round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}
