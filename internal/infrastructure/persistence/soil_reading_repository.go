package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/smartfertilizer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSoilReadingRepository implements soil.ReadingRepository using GORM
type GormSoilReadingRepository struct {
	db *gorm.DB
}

// NewGormSoilReadingRepository creates a new GormSoilReadingRepository
func NewGormSoilReadingRepository(db *gorm.DB) *GormSoilReadingRepository {
	return &GormSoilReadingRepository{db: db}
}

// Create stores a new reading
func (r *GormSoilReadingRepository) Create(ctx context.Context, reading *soil.SoilReading) error {
	if err := r.db.WithContext(ctx).Create(models.SoilReadingModelFromDomain(reading)).Error; err != nil {
		return fmt.Errorf("create soil reading: %w", err)
	}
	return nil
}

// FindByID finds a reading by ID with its owner populated
func (r *GormSoilReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*soil.SoilReading, error) {
	var model models.SoilReadingModel
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find soil reading: %w", err)
	}
	return model.ToDomain(), nil
}

// FindRecentByUser returns up to limit readings for the user, newest first
func (r *GormSoilReadingRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*soil.SoilReading, error) {
	if limit <= 0 || limit > shared.HistoryLimit {
		limit = shared.HistoryLimit
	}

	var rows []models.SoilReadingModel
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list soil readings: %w", err)
	}

	readings := make([]*soil.SoilReading, len(rows))
	for i := range rows {
		readings[i] = rows[i].ToDomain()
	}
	return readings, nil
}

// Ensure GormSoilReadingRepository implements ReadingRepository
var _ soil.ReadingRepository = (*GormSoilReadingRepository)(nil)
