package persistence

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appfertilizer "github.com/smartfertilizer/backend/internal/application/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/smartfertilizer/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecommendation(t *testing.T, userID uuid.UUID, reading *soil.SoilReading) *fertilizer.Recommendation {
	t.Helper()

	rec, err := fertilizer.NewRecommendation(userID, reading.ID, &fertilizer.Prediction{
		FertilizerType:    fertilizer.FertilizerN,
		QuantityKgPerAcre: 42.5,
		SoilHealthScore:   68,
		Deficiencies: []fertilizer.Deficiency{
			{Nutrient: "Nitrogen", Level: 40, Status: "Low", Severity: "High", Advice: "Apply urea in split doses"},
		},
		Suggestions: []string{"Add organic matter"},
	}, reading.Measurements)
	require.NoError(t, err)
	return rec
}

func TestGormRecommendationRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRecommendationRepository(db)
	user := createTestUser(t, db, "asha@example.com")
	reading := createTestReading(t, db, user.ID, time.Now().UTC())

	rec := newTestRecommendation(t, user.ID, reading)
	require.NoError(t, repo.Create(t.Context(), rec))

	found, err := repo.FindByID(t.Context(), rec.ID)
	require.NoError(t, err)

	assert.Equal(t, fertilizer.FertilizerN, found.FertilizerType)
	assert.Equal(t, 42.5, found.QuantityKgPerAcre)
	assert.Equal(t, rec.Deficiencies, found.Deficiencies)
	assert.Equal(t, []string{"Add organic matter"}, found.Suggestions)
	assert.Equal(t, fertilizer.SnapshotOf(reading.Measurements), found.Input)
	assert.Nil(t, found.Feedback)
	require.NotNil(t, found.Owner)
	assert.Equal(t, "Asha Farmer", found.Owner.Name)
	require.NotNil(t, found.SoilReading)
	assert.Equal(t, reading.ID, found.SoilReading.ID)

	_, err = repo.FindByID(t.Context(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormRecommendationRepository_FindRecentByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRecommendationRepository(db)
	user := createTestUser(t, db, "asha@example.com")

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		reading := createTestReading(t, db, user.ID, base)
		rec := newTestRecommendation(t, user.ID, reading)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(t.Context(), rec))
	}

	recs, err := repo.FindRecentByUser(t.Context(), user.ID, shared.HistoryLimit)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.True(t, recs[0].CreatedAt.Equal(base.Add(2*time.Hour)))
	assert.NotNil(t, recs[0].SoilReading)
}

func TestGormRecommendationRepository_SaveFeedback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRecommendationRepository(db)
	user := createTestUser(t, db, "asha@example.com")
	reading := createTestReading(t, db, user.ID, time.Now().UTC())
	rec := newTestRecommendation(t, user.ID, reading)
	require.NoError(t, repo.Create(t.Context(), rec))

	submitted := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, rec.SubmitFeedback(user.ID, true, "Yield improved", submitted))
	require.NoError(t, repo.SaveFeedback(t.Context(), rec))

	require.NoError(t, rec.SubmitFeedback(user.ID, false, "", submitted.Add(time.Hour)))
	require.NoError(t, repo.SaveFeedback(t.Context(), rec))

	found, err := repo.FindByID(t.Context(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Feedback)
	assert.False(t, found.Feedback.IsHelpful)
	assert.Empty(t, found.Feedback.Comment)
	assert.True(t, found.Feedback.SubmittedAt.Equal(submitted.Add(time.Hour)))

	missing := newTestRecommendation(t, user.ID, reading)
	require.NoError(t, missing.SubmitFeedback(user.ID, true, "", submitted))
	assert.ErrorIs(t, repo.SaveFeedback(t.Context(), missing), shared.ErrNotFound)
}

func TestGormTransactionScope(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	user := createTestUser(t, db, "asha@example.com")

	newReading := func() *soil.SoilReading {
		reading, err := soil.NewSoilReading(user.ID, soil.Measurements{
			Nitrogen: 10, Phosphorus: 10, Potassium: 10, PH: 7, Moisture: 20, Temperature: 20,
			CropType: soil.CropCorn,
		}, "")
		require.NoError(t, err)
		return reading
	}

	t.Run("commits reading and recommendation together", func(t *testing.T) {
		reading := newReading()
		rec := newTestRecommendation(t, user.ID, reading)

		err := scope.Execute(t.Context(), func(repos appfertilizer.TransactionalRepositories) error {
			if err := repos.Readings().Create(t.Context(), reading); err != nil {
				return err
			}
			return repos.Recommendations().Create(t.Context(), rec)
		})
		require.NoError(t, err)

		_, err = NewGormRecommendationRepository(db).FindByID(t.Context(), rec.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back the reading when the recommendation fails", func(t *testing.T) {
		reading := newReading()
		boom := errors.New("write failed")

		err := scope.Execute(t.Context(), func(repos appfertilizer.TransactionalRepositories) error {
			if err := repos.Readings().Create(t.Context(), reading); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		var count int64
		require.NoError(t, db.Model(&models.SoilReadingModel{}).Where("id = ?", reading.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}
