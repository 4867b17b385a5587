package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
)

// RecommendationModel is the persistence model for the Recommendation entity.
// Deficiencies, suggestions and the input snapshot are stored as JSON columns.
type RecommendationModel struct {
	ID                uuid.UUID                `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID                `gorm:"type:uuid;not null;index:idx_recommendations_user_created,priority:1"`
	SoilReadingID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	FertilizerType    string                   `gorm:"type:varchar(20);not null"`
	QuantityKgPerAcre float64                  `gorm:"not null"`
	SoilHealthScore   float64                  `gorm:"not null"`
	Deficiencies      []fertilizer.Deficiency  `gorm:"serializer:json"`
	Suggestions       []string                 `gorm:"serializer:json"`
	Input             fertilizer.InputSnapshot `gorm:"column:input_data;serializer:json"`
	FeedbackHelpful   *bool
	FeedbackText      string `gorm:"type:text"`
	FeedbackAt        *time.Time
	CreatedAt         time.Time         `gorm:"not null;index:idx_recommendations_user_created,priority:2,sort:desc"`
	User              *UserModel        `gorm:"foreignKey:UserID"`
	SoilReading       *SoilReadingModel `gorm:"foreignKey:SoilReadingID"`
}

// TableName returns the table name for GORM
func (RecommendationModel) TableName() string {
	return "recommendations"
}

// ToDomain converts the model to a domain Recommendation.
func (m *RecommendationModel) ToDomain() *fertilizer.Recommendation {
	rec := &fertilizer.Recommendation{
		ID:                m.ID,
		UserID:            m.UserID,
		SoilReadingID:     m.SoilReadingID,
		FertilizerType:    fertilizer.FertilizerType(m.FertilizerType),
		QuantityKgPerAcre: m.QuantityKgPerAcre,
		SoilHealthScore:   m.SoilHealthScore,
		Deficiencies:      m.Deficiencies,
		Suggestions:       m.Suggestions,
		Input:             m.Input,
		CreatedAt:         m.CreatedAt,
	}
	if rec.Deficiencies == nil {
		rec.Deficiencies = []fertilizer.Deficiency{}
	}
	if rec.Suggestions == nil {
		rec.Suggestions = []string{}
	}
	if m.FeedbackHelpful != nil && m.FeedbackAt != nil {
		rec.Feedback = &fertilizer.Feedback{
			IsHelpful:   *m.FeedbackHelpful,
			Comment:     m.FeedbackText,
			SubmittedAt: *m.FeedbackAt,
		}
	}
	if m.User != nil {
		rec.Owner = ownerOf(m.User)
	}
	if m.SoilReading != nil {
		rec.SoilReading = m.SoilReading.ToDomain()
	}
	return rec
}

// RecommendationModelFromDomain creates a persistence model from a domain Recommendation.
func RecommendationModelFromDomain(r *fertilizer.Recommendation) *RecommendationModel {
	m := &RecommendationModel{
		ID:                r.ID,
		UserID:            r.UserID,
		SoilReadingID:     r.SoilReadingID,
		FertilizerType:    string(r.FertilizerType),
		QuantityKgPerAcre: r.QuantityKgPerAcre,
		SoilHealthScore:   r.SoilHealthScore,
		Deficiencies:      r.Deficiencies,
		Suggestions:       r.Suggestions,
		Input:             r.Input,
		CreatedAt:         r.CreatedAt,
	}
	if r.Feedback != nil {
		helpful := r.Feedback.IsHelpful
		at := r.Feedback.SubmittedAt
		m.FeedbackHelpful = &helpful
		m.FeedbackText = r.Feedback.Comment
		m.FeedbackAt = &at
	}
	return m
}
