package fertilizer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
)

// FertilizerType is the fertilizer class recommended by the predictor
type FertilizerType string

const (
	FertilizerN       FertilizerType = "N"
	FertilizerP       FertilizerType = "P"
	FertilizerK       FertilizerType = "K"
	FertilizerOrganic FertilizerType = "Organic"
	FertilizerMixed   FertilizerType = "Mixed"
)

// IsValid reports whether the fertilizer type is known
func (f FertilizerType) IsValid() bool {
	switch f {
	case FertilizerN, FertilizerP, FertilizerK, FertilizerOrganic, FertilizerMixed:
		return true
	}
	return false
}

// Deficiency is one nutrient's finding within a recommendation
type Deficiency struct {
	Nutrient string  `json:"nutrient"`
	Level    float64 `json:"level"`
	Status   string  `json:"status"`
	Severity string  `json:"severity"`
	Advice   string  `json:"recommendation"`
}

// InputSnapshot is the immutable copy of the values sent to the predictor
type InputSnapshot struct {
	Nitrogen    float64       `json:"nitrogen"`
	Phosphorus  float64       `json:"phosphorus"`
	Potassium   float64       `json:"potassium"`
	PH          float64       `json:"ph"`
	Moisture    float64       `json:"moisture"`
	Temperature float64       `json:"temperature"`
	CropType    soil.CropType `json:"cropType"`
}

// SnapshotOf copies measurements into a snapshot
func SnapshotOf(m soil.Measurements) InputSnapshot {
	return InputSnapshot{
		Nitrogen:    m.Nitrogen,
		Phosphorus:  m.Phosphorus,
		Potassium:   m.Potassium,
		PH:          m.PH,
		Moisture:    m.Moisture,
		Temperature: m.Temperature,
		CropType:    m.CropType,
	}
}

// Feedback is the owner's opinion of a recommendation
type Feedback struct {
	IsHelpful   bool
	Comment     string
	SubmittedAt time.Time
}

const maxFeedbackLength = 1000

// Recommendation is the stored output of the prediction workflow for one soil reading
type Recommendation struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	SoilReadingID     uuid.UUID
	FertilizerType    FertilizerType
	QuantityKgPerAcre float64
	SoilHealthScore   float64
	Deficiencies      []Deficiency
	Suggestions       []string
	Input             InputSnapshot
	Feedback          *Feedback
	CreatedAt         time.Time

	// Populated on reads
	Owner       *shared.Owner
	SoilReading *soil.SoilReading
}

// NewRecommendation builds a recommendation from a prediction result.
// The input snapshot is taken from the predictor's echo when present, else from the request.
func NewRecommendation(userID, readingID uuid.UUID, p *Prediction, requested soil.Measurements) (*Recommendation, error) {
	if p == nil {
		return nil, shared.NewDomainError(shared.CodeInternal, "Prediction result is missing")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	snapshot := SnapshotOf(requested)
	if p.Input != nil {
		snapshot = *p.Input
		if snapshot.CropType == "" {
			snapshot.CropType = requested.CropType
		}
	}

	deficiencies := p.Deficiencies
	if deficiencies == nil {
		deficiencies = []Deficiency{}
	}
	suggestions := p.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return &Recommendation{
		ID:                uuid.New(),
		UserID:            userID,
		SoilReadingID:     readingID,
		FertilizerType:    p.FertilizerType,
		QuantityKgPerAcre: p.QuantityKgPerAcre,
		SoilHealthScore:   p.SoilHealthScore,
		Deficiencies:      deficiencies,
		Suggestions:       suggestions,
		Input:             snapshot,
		CreatedAt:         time.Now(),
	}, nil
}

// IsOwnedBy reports whether userID owns the recommendation
func (r *Recommendation) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}

// CanBeViewedBy allows the owner and administrators
func (r *Recommendation) CanBeViewedBy(userID uuid.UUID, isAdmin bool) bool {
	return r.IsOwnedBy(userID) || isAdmin
}

// SubmitFeedback replaces any previous feedback. Only the owner may do this, admins included.
func (r *Recommendation) SubmitFeedback(userID uuid.UUID, helpful bool, comment string, now time.Time) error {
	if !r.IsOwnedBy(userID) {
		return shared.NewDomainError(shared.CodeUnauthorized, "Not authorized to submit feedback for this recommendation")
	}
	if len(comment) > maxFeedbackLength {
		return shared.NewValidationError(shared.FieldError{
			Field:   "feedbackText",
			Message: fmt.Sprintf("Feedback cannot exceed %d characters", maxFeedbackLength),
		})
	}
	r.Feedback = &Feedback{
		IsHelpful:   helpful,
		Comment:     comment,
		SubmittedAt: now,
	}
	return nil
}
