package persistence

import (
	"github.com/smartfertilizer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AllModels lists every persistence model, in dependency order
func AllModels() []any {
	return []any{
		&models.UserModel{},
		&models.SoilReadingModel{},
		&models.RecommendationModel{},
	}
}

// AutoMigrate creates the schema from the models. Used by sqlite deployments
// and tests; postgres deployments run the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
