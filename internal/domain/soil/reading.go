package soil

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/shared"
)

const maxLocationLength = 200

// Range is an inclusive numeric bound
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Measurement ranges accepted for a soil reading
var (
	NutrientRange    = Range{Min: 0, Max: 100}
	PHRange          = Range{Min: 4.0, Max: 8.5}
	MoistureRange    = Range{Min: 0, Max: 100}
	TemperatureRange = Range{Min: 0, Max: 50}
)

// Measurements are the values a recommendation is computed from
type Measurements struct {
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
	PH          float64
	Moisture    float64
	Temperature float64
	CropType    CropType
}

// Validate reports every field outside its documented range
func (m Measurements) Validate() shared.FieldErrors {
	var errs shared.FieldErrors
	checks := []struct {
		field string
		label string
		value float64
		rng   Range
		fmt   string
	}{
		{"nitrogen", "Nitrogen", m.Nitrogen, NutrientRange, "%g"},
		{"phosphorus", "Phosphorus", m.Phosphorus, NutrientRange, "%g"},
		{"potassium", "Potassium", m.Potassium, NutrientRange, "%g"},
		{"ph", "pH", m.PH, PHRange, "%.1f"},
		{"moisture", "Moisture", m.Moisture, MoistureRange, "%g"},
		{"temperature", "Temperature", m.Temperature, TemperatureRange, "%g"},
	}
	for _, c := range checks {
		if !c.rng.Contains(c.value) {
			msg := fmt.Sprintf("%s must be between "+c.fmt+" and "+c.fmt, c.label, c.rng.Min, c.rng.Max)
			errs.Add(c.field, msg, c.value)
		}
	}
	if !m.CropType.IsValid() {
		errs.Add("cropType", "Invalid crop type", string(m.CropType))
	}
	return errs
}

// SoilReading is a record of measured or estimated soil values for a plot
type SoilReading struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Owner  *shared.Owner // populated on reads, nil when not loaded
	Measurements
	Location  string
	CreatedAt time.Time
}

// NewSoilReading validates the measurements and creates a reading owned by userID
func NewSoilReading(userID uuid.UUID, m Measurements, location string) (*SoilReading, error) {
	errs := m.Validate()
	location = strings.TrimSpace(location)
	if len(location) > maxLocationLength {
		errs.Add("location", "Location cannot exceed 200 characters", nil)
	}
	if userID == uuid.Nil {
		errs.Add("user", "Owner is required", nil)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &SoilReading{
		ID:           uuid.New(),
		UserID:       userID,
		Measurements: m,
		Location:     location,
		CreatedAt:    time.Now(),
	}, nil
}

// IsOwnedBy reports whether userID owns the reading
func (r *SoilReading) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}
