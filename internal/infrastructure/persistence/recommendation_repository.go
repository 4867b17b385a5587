package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRecommendationRepository implements fertilizer.RecommendationRepository using GORM
type GormRecommendationRepository struct {
	db *gorm.DB
}

// NewGormRecommendationRepository creates a new GormRecommendationRepository
func NewGormRecommendationRepository(db *gorm.DB) *GormRecommendationRepository {
	return &GormRecommendationRepository{db: db}
}

// Create stores a new recommendation
func (r *GormRecommendationRepository) Create(ctx context.Context, rec *fertilizer.Recommendation) error {
	if err := r.db.WithContext(ctx).Omit("User", "SoilReading").
		Create(models.RecommendationModelFromDomain(rec)).Error; err != nil {
		return fmt.Errorf("create recommendation: %w", err)
	}
	return nil
}

// FindByID finds a recommendation with owner and soil reading populated
func (r *GormRecommendationRepository) FindByID(ctx context.Context, id uuid.UUID) (*fertilizer.Recommendation, error) {
	var model models.RecommendationModel
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("SoilReading").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find recommendation: %w", err)
	}
	return model.ToDomain(), nil
}

// FindRecentByUser returns up to limit recommendations, newest first, soil reading populated
func (r *GormRecommendationRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*fertilizer.Recommendation, error) {
	if limit <= 0 || limit > shared.HistoryLimit {
		limit = shared.HistoryLimit
	}

	var rows []models.RecommendationModel
	if err := r.db.WithContext(ctx).
		Preload("SoilReading").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	recs := make([]*fertilizer.Recommendation, len(rows))
	for i := range rows {
		recs[i] = rows[i].ToDomain()
	}
	return recs, nil
}

// SaveFeedback overwrites the feedback columns of an existing recommendation
func (r *GormRecommendationRepository) SaveFeedback(ctx context.Context, rec *fertilizer.Recommendation) error {
	if rec.Feedback == nil {
		return shared.NewDomainError(shared.CodeValidation, "Feedback is required")
	}
	model := models.RecommendationModelFromDomain(rec)

	result := r.db.WithContext(ctx).
		Model(&models.RecommendationModel{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"feedback_helpful": model.FeedbackHelpful,
			"feedback_text":    model.FeedbackText,
			"feedback_at":      model.FeedbackAt,
		})
	if result.Error != nil {
		return fmt.Errorf("save feedback: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormRecommendationRepository implements RecommendationRepository
var _ fertilizer.RecommendationRepository = (*GormRecommendationRepository)(nil)
