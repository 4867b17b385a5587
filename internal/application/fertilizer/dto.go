package fertilizer

import (
	"time"

	"github.com/google/uuid"
	soilapp "github.com/smartfertilizer/backend/internal/application/soil"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
)

// RecommendInput is the request body of the recommendation workflow
type RecommendInput struct {
	soilapp.ReadingInput
	SoilDataID string `json:"soilDataId"`
}

// FeedbackInput is the request body for recommendation feedback
type FeedbackInput struct {
	IsHelpful    *bool  `json:"isHelpful" binding:"required"`
	FeedbackText string `json:"feedbackText" binding:"max=1000"`
}

// FeedbackResponse represents feedback in API responses
type FeedbackResponse struct {
	IsHelpful    bool      `json:"isHelpful"`
	FeedbackText string    `json:"feedbackText"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// RecommendationResponse represents a recommendation in API responses
type RecommendationResponse struct {
	ID                     uuid.UUID                `json:"id"`
	UserID                 uuid.UUID                `json:"userId"`
	User                   *soilapp.OwnerInfo       `json:"user,omitempty"`
	SoilDataID             uuid.UUID                `json:"soilDataId"`
	SoilData               *soilapp.ReadingResponse `json:"soilData,omitempty"`
	FertilizerType         string                   `json:"fertilizerType"`
	QuantityKgPerAcre      float64                  `json:"quantityKgPerAcre"`
	SoilHealthScore        float64                  `json:"soilHealthScore"`
	DeficiencyAnalysis     []fertilizer.Deficiency  `json:"deficiencyAnalysis"`
	ImprovementSuggestions []string                 `json:"improvementSuggestions"`
	InputData              fertilizer.InputSnapshot `json:"inputData"`
	Feedback               *FeedbackResponse        `json:"feedback,omitempty"`
	CreatedAt              time.Time                `json:"createdAt"`
}

// ToRecommendationResponse converts a domain recommendation
func ToRecommendationResponse(r *fertilizer.Recommendation) *RecommendationResponse {
	resp := &RecommendationResponse{
		ID:                     r.ID,
		UserID:                 r.UserID,
		User:                   soilapp.ToOwnerInfo(r.Owner),
		SoilDataID:             r.SoilReadingID,
		SoilData:               soilapp.ToReadingResponse(r.SoilReading),
		FertilizerType:         string(r.FertilizerType),
		QuantityKgPerAcre:      r.QuantityKgPerAcre,
		SoilHealthScore:        r.SoilHealthScore,
		DeficiencyAnalysis:     r.Deficiencies,
		ImprovementSuggestions: r.Suggestions,
		InputData:              r.Input,
		CreatedAt:              r.CreatedAt,
	}
	if r.Feedback != nil {
		resp.Feedback = &FeedbackResponse{
			IsHelpful:    r.Feedback.IsHelpful,
			FeedbackText: r.Feedback.Comment,
			SubmittedAt:  r.Feedback.SubmittedAt,
		}
	}
	return resp
}

// ToRecommendationResponses converts a list of recommendations
func ToRecommendationResponses(recs []*fertilizer.Recommendation) []RecommendationResponse {
	out := make([]RecommendationResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, *ToRecommendationResponse(r))
	}
	return out
}

// RecommendResult is the outcome of the recommendation workflow
type RecommendResult struct {
	Recommendation *RecommendationResponse `json:"recommendation"`
	Prediction     *fertilizer.Prediction  `json:"prediction"`
}

// Report is a rendered recommendation report
type Report struct {
	Filename  string
	Content   []byte
	URL       string // presigned download link when archived
	ExpiresAt time.Time
}
