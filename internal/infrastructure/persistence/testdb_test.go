package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/identity"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func createUserValue(t *testing.T, email string) *identity.User {
	t.Helper()

	user, err := identity.NewUser("Asha Farmer", email, "secret123")
	require.NoError(t, err)
	return user
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *identity.User {
	t.Helper()

	user := createUserValue(t, email)
	require.NoError(t, NewGormUserRepository(db).Create(t.Context(), user))
	return user
}

func createReadingValue(t *testing.T, userID uuid.UUID, createdAt time.Time) *soil.SoilReading {
	t.Helper()

	reading, err := soil.NewSoilReading(userID, soil.Measurements{
		Nitrogen: 40, Phosphorus: 30, Potassium: 35,
		PH: 6.5, Moisture: 55, Temperature: 25,
		CropType: soil.CropRice,
	}, "North field")
	require.NoError(t, err)
	reading.CreatedAt = createdAt
	return reading
}

func createTestReading(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time) *soil.SoilReading {
	t.Helper()

	reading := createReadingValue(t, userID, createdAt)
	require.NoError(t, NewGormSoilReadingRepository(db).Create(t.Context(), reading))
	return reading
}
