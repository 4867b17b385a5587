package fertilizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	soilapp "github.com/smartfertilizer/backend/internal/application/soil"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPredictor is a mock implementation of fertilizer.Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, in soil.Measurements) (*fertilizer.Prediction, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fertilizer.Prediction), args.Error(1)
}

// MockReadingRepository is a mock implementation of soil.ReadingRepository
type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) Create(ctx context.Context, reading *soil.SoilReading) error {
	return m.Called(ctx, reading).Error(0)
}

func (m *MockReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*soil.SoilReading, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*soil.SoilReading), args.Error(1)
}

func (m *MockReadingRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*soil.SoilReading, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*soil.SoilReading), args.Error(1)
}

// MockRecommendationRepository is a mock implementation of fertilizer.RecommendationRepository
type MockRecommendationRepository struct {
	mock.Mock
}

func (m *MockRecommendationRepository) Create(ctx context.Context, rec *fertilizer.Recommendation) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecommendationRepository) FindByID(ctx context.Context, id uuid.UUID) (*fertilizer.Recommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fertilizer.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*fertilizer.Recommendation, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fertilizer.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) SaveFeedback(ctx context.Context, rec *fertilizer.Recommendation) error {
	return m.Called(ctx, rec).Error(0)
}

// MockMetrics is a mock implementation of MetricsRecorder
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordRecommendation(ctx context.Context, fertilizerType, cropType string) {
	m.Called(ctx, fertilizerType, cropType)
}

func (m *MockMetrics) RecordPredictionFailure(ctx context.Context, code string) {
	m.Called(ctx, code)
}

func (m *MockMetrics) RecordPredictionLatency(ctx context.Context, d time.Duration, outcome string) {
	m.Called(ctx, d, outcome)
}

type recommendFixture struct {
	service   *RecommendationService
	predictor *MockPredictor
	readings  *MockReadingRepository
	recs      *MockRecommendationRepository
	metrics   *MockMetrics
}

func newRecommendFixture() *recommendFixture {
	f := &recommendFixture{
		predictor: new(MockPredictor),
		readings:  new(MockReadingRepository),
		recs:      new(MockRecommendationRepository),
		metrics:   new(MockMetrics),
	}
	f.service = NewRecommendationService(f.predictor, f.recs, NewNoOpTransactionScope(f.readings, f.recs), zap.NewNop())
	f.metrics.On("RecordPredictionLatency", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	f.service.SetMetrics(f.metrics)
	return f
}

func wheatInput() RecommendInput {
	return RecommendInput{ReadingInput: soilapp.ReadingInput{
		Nitrogen:    soilapp.NewNumber(40),
		Phosphorus:  soilapp.NewNumber(30),
		Potassium:   soilapp.NewNumber(35),
		PH:          soilapp.NewNumber(6.5),
		Moisture:    soilapp.NewNumber(55),
		Temperature: soilapp.NewNumber(25),
		CropType:    "Wheat",
	}}
}

func samplePrediction() *fertilizer.Prediction {
	return &fertilizer.Prediction{
		FertilizerType:    fertilizer.FertilizerN,
		QuantityKgPerAcre: 45,
		SoilHealthScore:   68,
		Deficiencies:      []fertilizer.Deficiency{{Nutrient: "Nitrogen", Level: 40, Status: "Low", Severity: "Medium", Advice: "Apply urea"}},
		Suggestions:       []string{"Rotate with legumes"},
	}
}

func TestRecommendationService_Recommend(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates reading and recommendation", func(t *testing.T) {
		f := newRecommendFixture()
		prediction := samplePrediction()
		var created *fertilizer.Recommendation

		f.predictor.On("Predict", ctx, mock.AnythingOfType("soil.Measurements")).Return(prediction, nil)
		f.readings.On("Create", ctx, mock.AnythingOfType("*soil.SoilReading")).Return(nil)
		f.metrics.On("RecordRecommendation", ctx, "N", "Wheat").Return()

		result, err := runRecommend(t, f, ctx, userID, wheatInput(), &created)

		require.NoError(t, err)
		assert.Equal(t, userID, result.Recommendation.UserID)
		assert.Equal(t, "N", result.Recommendation.FertilizerType)
		assert.Equal(t, soil.CropWheat, result.Recommendation.InputData.CropType)
		assert.Same(t, prediction, result.Prediction)
		f.readings.AssertNumberOfCalls(t, "Create", 1)
		f.metrics.AssertExpectations(t)
		f.metrics.AssertCalled(t, "RecordPredictionLatency", ctx, mock.AnythingOfType("time.Duration"), "success")
	})

	t.Run("validation errors stop before the predictor", func(t *testing.T) {
		f := newRecommendFixture()
		in := wheatInput()
		in.Nitrogen = soilapp.NewNumber(150)
		in.PH = soilapp.NewNumber(10)

		_, err := f.service.Recommend(ctx, userID, in)

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeValidation, de.Code)
		assert.Len(t, de.Details, 2)
		f.predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
	})

	t.Run("predictor unavailable writes nothing", func(t *testing.T) {
		f := newRecommendFixture()
		unavailable := shared.NewDomainError(shared.CodeServiceUnavailable, "AI model service is currently unavailable")
		f.predictor.On("Predict", ctx, mock.Anything).Return(nil, unavailable)
		f.metrics.On("RecordPredictionFailure", ctx, shared.CodeServiceUnavailable).Return()

		_, err := f.service.Recommend(ctx, userID, wheatInput())

		assert.ErrorIs(t, err, unavailable)
		f.metrics.AssertCalled(t, "RecordPredictionLatency", ctx, mock.AnythingOfType("time.Duration"), shared.CodeServiceUnavailable)
		f.readings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.recs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("upstream error keeps message and status", func(t *testing.T) {
		f := newRecommendFixture()
		f.predictor.On("Predict", ctx, mock.Anything).Return(nil, shared.NewUpstreamError(422, "Invalid crop"))
		f.metrics.On("RecordPredictionFailure", ctx, shared.CodeUpstream).Return()

		_, err := f.service.Recommend(ctx, userID, wheatInput())

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, 422, de.Status)
		assert.Equal(t, "Invalid crop", de.Message)
	})

	t.Run("supplied reading must belong to the caller", func(t *testing.T) {
		f := newRecommendFixture()
		other, err := soil.NewSoilReading(uuid.New(), soil.Measurements{
			Nitrogen: 40, Phosphorus: 30, Potassium: 35, PH: 6.5, Moisture: 55, Temperature: 25, CropType: soil.CropWheat,
		}, "")
		require.NoError(t, err)

		f.predictor.On("Predict", ctx, mock.Anything).Return(samplePrediction(), nil)
		f.readings.On("FindByID", ctx, other.ID).Return(other, nil)

		in := wheatInput()
		in.SoilDataID = other.ID.String()
		_, err = f.service.Recommend(ctx, userID, in)

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeNotFound, de.Code)
		assert.Equal(t, MsgSoilDataNotFound, de.Message)
		f.recs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown reading id", func(t *testing.T) {
		f := newRecommendFixture()
		missing := uuid.New()
		f.predictor.On("Predict", ctx, mock.Anything).Return(samplePrediction(), nil)
		f.readings.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		in := wheatInput()
		in.SoilDataID = missing.String()
		_, err := f.service.Recommend(ctx, userID, in)

		assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	})

	t.Run("malformed reading id", func(t *testing.T) {
		f := newRecommendFixture()
		in := wheatInput()
		in.SoilDataID = "not-a-uuid"

		_, err := f.service.Recommend(ctx, userID, in)

		assert.True(t, shared.IsCode(err, shared.CodeNotFound))
		f.predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
	})
}

// runRecommend makes FindByID return whatever Create stored
func runRecommend(t *testing.T, f *recommendFixture, ctx context.Context, userID uuid.UUID, in RecommendInput, created **fertilizer.Recommendation) (*RecommendResult, error) {
	t.Helper()
	f.recs.On("Create", ctx, mock.AnythingOfType("*fertilizer.Recommendation")).Run(func(args mock.Arguments) {
		rec := *args.Get(1).(*fertilizer.Recommendation)
		*created = &rec
		f.recs.On("FindByID", ctx, rec.ID).Return(&rec, nil)
	}).Return(nil)
	return f.service.Recommend(ctx, userID, in)
}

func TestRecommendationService_GetByID(t *testing.T) {
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()
	rec, err := fertilizer.NewRecommendation(owner, uuid.New(), samplePrediction(), soil.Measurements{CropType: soil.CropRice})
	require.NoError(t, err)

	f := newRecommendFixture()
	missing := uuid.New()
	f.recs.On("FindByID", ctx, rec.ID).Return(rec, nil)
	f.recs.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	got, err := f.service.GetByID(ctx, owner, "user", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = f.service.GetByID(ctx, stranger, "admin", rec.ID)
	assert.NoError(t, err)

	_, err = f.service.GetByID(ctx, stranger, "user", rec.ID)
	assert.True(t, shared.IsCode(err, shared.CodeForbidden))

	_, err = f.service.GetByID(ctx, owner, "user", missing)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func TestRecommendationService_History(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newRecommendFixture()
	f.recs.On("FindRecentByUser", ctx, userID, shared.HistoryLimit).Return([]*fertilizer.Recommendation{}, nil)

	history, err := f.service.History(ctx, userID)

	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestRecommendationService_SubmitFeedback(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	yes := true

	newRec := func(t *testing.T) *fertilizer.Recommendation {
		rec, err := fertilizer.NewRecommendation(owner, uuid.New(), samplePrediction(), soil.Measurements{CropType: soil.CropCorn})
		require.NoError(t, err)
		return rec
	}

	t.Run("owner overwrites feedback", func(t *testing.T) {
		f := newRecommendFixture()
		now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		f.service.now = func() time.Time { return now }
		rec := newRec(t)
		f.recs.On("FindByID", ctx, rec.ID).Return(rec, nil)
		f.recs.On("SaveFeedback", ctx, rec).Return(nil)

		resp, err := f.service.SubmitFeedback(ctx, owner, rec.ID, FeedbackInput{IsHelpful: &yes, FeedbackText: " great "})

		require.NoError(t, err)
		require.NotNil(t, resp.Feedback)
		assert.True(t, resp.Feedback.IsHelpful)
		assert.Equal(t, "great", resp.Feedback.FeedbackText)
		assert.Equal(t, now, resp.Feedback.SubmittedAt)
	})

	t.Run("admin who is not the owner is rejected", func(t *testing.T) {
		f := newRecommendFixture()
		rec := newRec(t)
		f.recs.On("FindByID", ctx, rec.ID).Return(rec, nil)

		_, err := f.service.SubmitFeedback(ctx, uuid.New(), rec.ID, FeedbackInput{IsHelpful: &yes})

		assert.True(t, shared.IsCode(err, shared.CodeUnauthorized))
		f.recs.AssertNotCalled(t, "SaveFeedback", mock.Anything, mock.Anything)
	})

	t.Run("missing recommendation", func(t *testing.T) {
		f := newRecommendFixture()
		id := uuid.New()
		f.recs.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.SubmitFeedback(ctx, owner, id, FeedbackInput{IsHelpful: &yes})

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, MsgRecommendationNotFound, de.Message)
	})
}
