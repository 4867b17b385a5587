package soil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
)

// Number is a measurement that arrives as a JSON number or a numeric string.
// A value that cannot be parsed is kept and reported by validation instead of
// failing the whole request body.
type Number struct {
	value float64
	raw   string
	valid bool
}

// NewNumber returns a valid Number holding v
func NewNumber(v float64) *Number {
	return &Number{value: v, raw: strconv.FormatFloat(v, 'f', -1, 64), valid: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	n.raw = s
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		n.raw = str
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		n.valid = false
		return nil
	}
	n.value = v
	n.valid = true
	return nil
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return json.Marshal(n.raw)
	}
	return json.Marshal(n.value)
}

// Float returns the parsed value, zero when missing or invalid
func (n *Number) Float() float64 {
	if n == nil {
		return 0
	}
	return n.value
}

// Valid reports whether the value parsed as a finite number
func (n *Number) Valid() bool {
	return n != nil && n.valid
}

const maxLocationLength = 200

// ReadingInput is the request body for a soil reading
type ReadingInput struct {
	Nitrogen    *Number `json:"nitrogen"`
	Phosphorus  *Number `json:"phosphorus"`
	Potassium   *Number `json:"potassium"`
	PH          *Number `json:"ph"`
	Moisture    *Number `json:"moisture"`
	Temperature *Number `json:"temperature"`
	CropType    string  `json:"cropType"`
	Location    string  `json:"location"`
}

// Measurements parses and range-checks the input, reporting every invalid field
// in field order. A field that failed to parse is not range-checked again.
func (in ReadingInput) Measurements() (soil.Measurements, shared.FieldErrors) {
	parseErrs := map[string]shared.FieldError{}
	number := func(field, label string, n *Number) float64 {
		switch {
		case n == nil:
			parseErrs[field] = shared.FieldError{Field: field, Message: label + " is required"}
		case !n.Valid():
			parseErrs[field] = shared.FieldError{Field: field, Message: label + " must be a number", Value: n.raw}
		}
		return n.Float()
	}

	m := soil.Measurements{
		Nitrogen:    number("nitrogen", "Nitrogen", in.Nitrogen),
		Phosphorus:  number("phosphorus", "Phosphorus", in.Phosphorus),
		Potassium:   number("potassium", "Potassium", in.Potassium),
		PH:          number("ph", "pH", in.PH),
		Moisture:    number("moisture", "Moisture", in.Moisture),
		Temperature: number("temperature", "Temperature", in.Temperature),
		CropType:    soil.ParseCropType(in.CropType),
	}
	if m.CropType == "" {
		parseErrs["cropType"] = shared.FieldError{Field: "cropType", Message: "Crop type is required"}
	}

	rangeErrs := map[string]shared.FieldError{}
	for _, e := range m.Validate() {
		rangeErrs[e.Field] = e
	}

	var errs shared.FieldErrors
	for _, field := range []string{"nitrogen", "phosphorus", "potassium", "ph", "moisture", "temperature", "cropType"} {
		if e, ok := parseErrs[field]; ok {
			errs = append(errs, e)
		} else if e, ok := rangeErrs[field]; ok {
			errs = append(errs, e)
		}
	}
	if len(strings.TrimSpace(in.Location)) > maxLocationLength {
		errs.Add("location", "Location cannot exceed 200 characters", nil)
	}
	return m, errs
}

// OwnerInfo is the owner display block embedded in responses
type OwnerInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ToOwnerInfo converts a populated owner, nil when not loaded
func ToOwnerInfo(o *shared.Owner) *OwnerInfo {
	if o == nil {
		return nil
	}
	return &OwnerInfo{ID: o.ID, Name: o.Name, Email: o.Email}
}

// ReadingResponse represents a soil reading in API responses
type ReadingResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	User        *OwnerInfo `json:"user,omitempty"`
	Nitrogen    float64    `json:"nitrogen"`
	Phosphorus  float64    `json:"phosphorus"`
	Potassium   float64    `json:"potassium"`
	PH          float64    `json:"ph"`
	Moisture    float64    `json:"moisture"`
	Temperature float64    `json:"temperature"`
	CropType    string     `json:"cropType"`
	Location    string     `json:"location,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToReadingResponse converts a domain reading
func ToReadingResponse(r *soil.SoilReading) *ReadingResponse {
	if r == nil {
		return nil
	}
	return &ReadingResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		User:        ToOwnerInfo(r.Owner),
		Nitrogen:    r.Nitrogen,
		Phosphorus:  r.Phosphorus,
		Potassium:   r.Potassium,
		PH:          r.PH,
		Moisture:    r.Moisture,
		Temperature: r.Temperature,
		CropType:    r.CropType.String(),
		Location:    r.Location,
		CreatedAt:   r.CreatedAt,
	}
}

// ToReadingResponses converts a list of readings
func ToReadingResponses(readings []*soil.SoilReading) []ReadingResponse {
	out := make([]ReadingResponse, 0, len(readings))
	for _, r := range readings {
		out = append(out, *ToReadingResponse(r))
	}
	return out
}

// Export is a generated file ready to be served
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}
