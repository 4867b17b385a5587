package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/application/fertilizer"
	domain "github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRecommendationService is a mock implementation of RecommendationService
type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Recommend(ctx context.Context, userID uuid.UUID, input fertilizer.RecommendInput) (*fertilizer.RecommendResult, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fertilizer.RecommendResult), args.Error(1)
}

func (m *MockRecommendationService) History(ctx context.Context, userID uuid.UUID) ([]fertilizer.RecommendationResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fertilizer.RecommendationResponse), args.Error(1)
}

func (m *MockRecommendationService) GetByID(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*fertilizer.RecommendationResponse, error) {
	args := m.Called(ctx, userID, role, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fertilizer.RecommendationResponse), args.Error(1)
}

func (m *MockRecommendationService) SubmitFeedback(ctx context.Context, userID, id uuid.UUID, input fertilizer.FeedbackInput) (*fertilizer.RecommendationResponse, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fertilizer.RecommendationResponse), args.Error(1)
}

func (m *MockRecommendationService) Report(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID, delivery fertilizer.ReportDelivery) (*fertilizer.Report, error) {
	args := m.Called(ctx, userID, role, id, delivery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fertilizer.Report), args.Error(1)
}

// MockLocationProvider is a mock implementation of soil.LocationProvider
type MockLocationProvider struct {
	mock.Mock
}

func (m *MockLocationProvider) FetchByCoordinates(ctx context.Context, lat, lon float64) (*soil.LocationEstimate, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*soil.LocationEstimate), args.Error(1)
}

func setupFertilizerRouter(svc *MockRecommendationService, loc *MockLocationProvider, userID uuid.UUID, role string) *gin.Engine {
	h := NewFertilizerHandler(NewBaseHandler(true), svc)
	lh := NewLocationHandler(NewBaseHandler(true), loc)
	router := gin.New()
	group := router.Group("/fertilizer", asUser(userID, role))
	group.POST("/recommend", h.Recommend)
	group.GET("/history", h.History)
	group.POST("/fetch-location-data", lh.FetchLocationData)
	group.GET("/:id", h.GetByID)
	group.PATCH("/:id/feedback", h.SubmitFeedback)
	group.GET("/:id/report", h.Report)
	return router
}

func TestFertilizerHandler_Recommend(t *testing.T) {
	userID := uuid.New()

	t.Run("returns recommendation and prediction", func(t *testing.T) {
		svc := new(MockRecommendationService)
		recID := uuid.New()
		soilDataID := uuid.New().String()
		svc.On("Recommend", mock.Anything, userID, mock.MatchedBy(func(in fertilizer.RecommendInput) bool {
			return in.SoilDataID == soilDataID && in.CropType == "Rice" && in.Moisture.Float() == 55
		})).Return(&fertilizer.RecommendResult{
			Recommendation: &fertilizer.RecommendationResponse{ID: recID, UserID: userID, FertilizerType: "Mixed"},
			Prediction:     &domain.Prediction{FertilizerType: domain.FertilizerMixed, QuantityKgPerAcre: 85.5},
		}, nil)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodPost, "/fertilizer/recommend", map[string]any{
			"nitrogen": 40, "phosphorus": 30, "potassium": 35, "ph": 6.5,
			"moisture": "55", "temperature": 25, "cropType": "Rice", "soilDataId": soilDataID,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var got struct {
			Recommendation struct {
				ID uuid.UUID `json:"id"`
			} `json:"recommendation"`
			Prediction struct {
				QuantityKgPerAcre float64 `json:"quantityKgPerAcre"`
			} `json:"prediction"`
		}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
		assert.Equal(t, recID, got.Recommendation.ID)
		assert.Equal(t, 85.5, got.Prediction.QuantityKgPerAcre)
		svc.AssertExpectations(t)
	})

	t.Run("ai service down", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("Recommend", mock.Anything, userID, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeServiceUnavailable, "AI model service is currently unavailable"))

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodPost, "/fertilizer/recommend", `{"nitrogen": 40}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "AI model service is currently unavailable", decodeEnvelope(t, w).Message)
	})

	t.Run("collaborator status passes through", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("Recommend", mock.Anything, userID, mock.Anything).
			Return(nil, shared.NewUpstreamError(http.StatusBadRequest, "Missing field: ph"))

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodPost, "/fertilizer/recommend", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing field: ph", decodeEnvelope(t, w).Message)
	})

	t.Run("unknown reading", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("Recommend", mock.Anything, userID, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeNotFound, "Soil data not found"))

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodPost, "/fertilizer/recommend",
			`{"soilDataId": "`+uuid.NewString()+`"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFertilizerHandler_History(t *testing.T) {
	userID := uuid.New()
	svc := new(MockRecommendationService)
	svc.On("History", mock.Anything, userID).Return([]fertilizer.RecommendationResponse{
		{ID: uuid.New(), CreatedAt: time.Now()},
	}, nil)

	w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodGet, "/fertilizer/history", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
}

func TestFertilizerHandler_GetByID(t *testing.T) {
	userID := uuid.New()
	recID := uuid.New()

	t.Run("admin passes role", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("GetByID", mock.Anything, userID, "admin", recID).
			Return(&fertilizer.RecommendationResponse{ID: recID}, nil)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "admin"), http.MethodGet, "/fertilizer/"+recID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("GetByID", mock.Anything, userID, "user", recID).
			Return(nil, shared.NewDomainError(shared.CodeForbidden, "Not authorized to access this recommendation"))

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodGet, "/fertilizer/"+recID.String(), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Not authorized to access this recommendation", decodeEnvelope(t, w).Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := new(MockRecommendationService)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodGet, "/fertilizer/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFertilizerHandler_SubmitFeedback(t *testing.T) {
	userID := uuid.New()
	recID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("SubmitFeedback", mock.Anything, userID, recID, mock.MatchedBy(func(in fertilizer.FeedbackInput) bool {
			return in.IsHelpful != nil && !*in.IsHelpful && in.FeedbackText == "Too much urea"
		})).Return(&fertilizer.RecommendationResponse{ID: recID}, nil)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodPatch, "/fertilizer/"+recID.String()+"/feedback",
			`{"isHelpful": false, "feedbackText": "Too much urea"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("isHelpful is required", func(t *testing.T) {
		svc := new(MockRecommendationService)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodPatch, "/fertilizer/"+recID.String()+"/feedback",
			`{"feedbackText": "ok"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "isHelpful", env.Errors[0].Field)
	})

	t.Run("not the owner", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("SubmitFeedback", mock.Anything, userID, recID, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeUnauthorized, "Not authorized"))

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "admin"), http.MethodPatch, "/fertilizer/"+recID.String()+"/feedback",
			`{"isHelpful": true}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestFertilizerHandler_Report(t *testing.T) {
	userID := uuid.New()
	recID := uuid.New()

	t.Run("inline pdf", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("Report", mock.Anything, userID, "user", recID, fertilizer.DeliveryInline).
			Return(&fertilizer.Report{Filename: "recommendation-1234.pdf", Content: []byte("%PDF-1.4")}, nil)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodGet, "/fertilizer/"+recID.String()+"/report", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="recommendation-1234.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.4", w.Body.String())
	})

	t.Run("presigned link", func(t *testing.T) {
		svc := new(MockRecommendationService)
		expires := time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)
		svc.On("Report", mock.Anything, userID, "user", recID, fertilizer.DeliveryURL).Return(&fertilizer.Report{
			Filename:  "recommendation-1234.pdf",
			URL:       "https://s3.example.com/reports/x.pdf?X-Amz-Signature=abc",
			ExpiresAt: expires,
		}, nil)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodGet, "/fertilizer/"+recID.String()+"/report?delivery=url", nil)

		assert.Equal(t, http.StatusCreated, w.Code)
		var got ReportLinkResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
		assert.Equal(t, "https://s3.example.com/reports/x.pdf?X-Amz-Signature=abc", got.URL)
		assert.True(t, expires.Equal(got.ExpiresAt))
	})

	t.Run("unknown delivery", func(t *testing.T) {
		svc := new(MockRecommendationService)

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodGet, "/fertilizer/"+recID.String()+"/report?delivery=fax", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "delivery", env.Errors[0].Field)
	})

	t.Run("renderer disabled", func(t *testing.T) {
		svc := new(MockRecommendationService)
		svc.On("Report", mock.Anything, userID, "user", recID, fertilizer.DeliveryInline).
			Return(nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Report rendering is not available"))

		w := doJSON(setupFertilizerRouter(svc, nil, userID, "user"), http.MethodGet, "/fertilizer/"+recID.String()+"/report", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestLocationHandler_FetchLocationData(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		loc := new(MockLocationProvider)
		loc.On("FetchByCoordinates", mock.Anything, 0.0, 73.85).Return(&soil.LocationEstimate{
			Longitude: 73.85,
			Nitrogen:  45,
			Sources:   soil.LocationSources{Weather: soil.SourceLive, Soil: soil.SourceEstimated, Geocoding: soil.SourceFallback},
		}, nil)

		w := doJSON(setupFertilizerRouter(nil, loc, userID, "user"), http.MethodPost, "/fertilizer/fetch-location-data",
			`{"latitude": 0, "longitude": 73.85}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var got soil.LocationEstimate
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
		assert.Equal(t, 45.0, got.Nitrogen)
		assert.Equal(t, soil.SourceEstimated, got.Sources.Soil)
		loc.AssertExpectations(t)
	})

	t.Run("out of range", func(t *testing.T) {
		loc := new(MockLocationProvider)

		w := doJSON(setupFertilizerRouter(nil, loc, userID, "user"), http.MethodPost, "/fertilizer/fetch-location-data",
			`{"latitude": 95, "longitude": -200}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Len(t, env.Errors, 2)
		loc.AssertNotCalled(t, "FetchByCoordinates", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		w := doJSON(setupFertilizerRouter(nil, new(MockLocationProvider), userID, "user"), http.MethodPost, "/fertilizer/fetch-location-data", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, decodeEnvelope(t, w).Errors, 2)
	})
}
