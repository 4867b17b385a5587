package persistence

import (
	"context"

	appfertilizer "github.com/smartfertilizer/backend/internal/application/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// The reading and recommendation writes of one workflow commit together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction, rolling back when it returns an error.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfertilizer.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Readings returns the soil reading repository bound to the transaction.
func (r *gormTransactionalRepositories) Readings() soil.ReadingRepository {
	return NewGormSoilReadingRepository(r.tx)
}

// Recommendations returns the recommendation repository bound to the transaction.
func (r *gormTransactionalRepositories) Recommendations() fertilizer.RecommendationRepository {
	return NewGormRecommendationRepository(r.tx)
}

var (
	_ appfertilizer.TransactionScope          = (*GormTransactionScope)(nil)
	_ appfertilizer.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
