package fertilizer

import (
	"context"

	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
)

// Prediction is the canonical form of the AI model service response
type Prediction struct {
	FertilizerType    FertilizerType `json:"fertilizerType"`
	QuantityKgPerAcre float64        `json:"quantityKgPerAcre"`
	SoilHealthScore   float64        `json:"soilHealthScore"`
	Deficiencies      []Deficiency   `json:"deficiencyAnalysis"`
	Suggestions       []string       `json:"improvementSuggestions"`
	Input             *InputSnapshot `json:"inputData,omitempty"`
}

// Validate checks the predictor kept to its contract
func (p *Prediction) Validate() error {
	var errs shared.FieldErrors
	if !p.FertilizerType.IsValid() {
		errs.Add("fertilizerType", "Unknown fertilizer type", string(p.FertilizerType))
	}
	if p.QuantityKgPerAcre < 0 {
		errs.Add("quantityKgPerAcre", "Quantity cannot be negative", p.QuantityKgPerAcre)
	}
	if p.SoilHealthScore < 0 || p.SoilHealthScore > 100 {
		errs.Add("soilHealthScore", "Soil health score must be between 0 and 100", p.SoilHealthScore)
	}
	if len(errs) == 0 {
		return nil
	}
	return &shared.DomainError{
		Code:    shared.CodeUpstream,
		Message: "AI model service returned an invalid prediction",
		Details: errs,
	}
}

// Predictor is the external prediction collaborator
type Predictor interface {
	Predict(ctx context.Context, m soil.Measurements) (*Prediction, error)
}
