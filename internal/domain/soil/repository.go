package soil

import (
	"context"

	"github.com/google/uuid"
)

// ReadingRepository defines persistence for soil readings
type ReadingRepository interface {
	// Create stores a new reading
	Create(ctx context.Context, reading *SoilReading) error

	// FindByID finds a reading by ID, with owner display fields populated
	FindByID(ctx context.Context, id uuid.UUID) (*SoilReading, error)

	// FindRecentByUser returns up to limit readings for the user, newest first
	FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*SoilReading, error)
}
