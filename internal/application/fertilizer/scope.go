package fertilizer

import (
	"context"

	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/soil"
)

// TransactionScope runs the reading and recommendation writes of one workflow
// atomically. If fn returns an error nothing is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share the transaction of the enclosing scope
type TransactionalRepositories interface {
	Readings() soil.ReadingRepository
	Recommendations() fertilizer.RecommendationRepository
}

// NoOpTransactionScope hands out the given repositories without a transaction.
// Used in tests.
type NoOpTransactionScope struct {
	readings        soil.ReadingRepository
	recommendations fertilizer.RecommendationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(readings soil.ReadingRepository, recommendations fertilizer.RecommendationRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{readings: readings, recommendations: recommendations}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Readings returns the soil reading repository
func (s *NoOpTransactionScope) Readings() soil.ReadingRepository {
	return s.readings
}

// Recommendations returns the recommendation repository
func (s *NoOpTransactionScope) Recommendations() fertilizer.RecommendationRepository {
	return s.recommendations
}
