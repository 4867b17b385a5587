package fertilizer

import (
	"context"

	"github.com/google/uuid"
)

// RecommendationRepository defines persistence for recommendations
type RecommendationRepository interface {
	// Create stores a new recommendation
	Create(ctx context.Context, rec *Recommendation) error

	// FindByID finds a recommendation with owner and soil reading populated
	FindByID(ctx context.Context, id uuid.UUID) (*Recommendation, error)

	// FindRecentByUser returns up to limit recommendations, newest first, soil reading populated
	FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Recommendation, error)

	// SaveFeedback overwrites the feedback columns of an existing recommendation
	SaveFeedback(ctx context.Context, rec *Recommendation) error
}
