package fertilizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/identity"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"github.com/smartfertilizer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Messages returned to clients
const (
	MsgSoilDataNotFound       = "Soil data not found"
	MsgRecommendationNotFound = "Recommendation not found"
	MsgAccessDenied           = "Not authorized to access this recommendation"
)

// MetricsRecorder receives workflow outcomes
type MetricsRecorder interface {
	RecordRecommendation(ctx context.Context, fertilizerType, cropType string)
	RecordPredictionFailure(ctx context.Context, code string)
	RecordPredictionLatency(ctx context.Context, d time.Duration, outcome string)
}

// RecommendationService orchestrates the prediction workflow and recommendation access
type RecommendationService struct {
	predictor fertilizer.Predictor
	recRepo   fertilizer.RecommendationRepository
	txScope   TransactionScope
	metrics   MetricsRecorder
	renderer  ReportRenderer
	archive   ReportArchive
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecommendationService creates a new RecommendationService
func NewRecommendationService(
	predictor fertilizer.Predictor,
	recRepo fertilizer.RecommendationRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		predictor: predictor,
		recRepo:   recRepo,
		txScope:   txScope,
		logger:    logger,
		now:       time.Now,
	}
}

// SetMetrics sets the workflow metrics recorder
func (s *RecommendationService) SetMetrics(metrics MetricsRecorder) {
	s.metrics = metrics
}

// Recommend runs the workflow: validate, predict, then store the reading and
// recommendation in one transaction.
func (s *RecommendationService) Recommend(ctx context.Context, userID uuid.UUID, input RecommendInput) (*RecommendResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "recommendation", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrCropType, input.CropType,
	)

	result, err := s.recommend(ctx, userID, input)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecommendationID, result.Recommendation.ID,
		telemetry.SpanAttrFertilizerType, string(result.Prediction.FertilizerType),
	)
	return result, nil
}

func (s *RecommendationService) recommend(ctx context.Context, userID uuid.UUID, input RecommendInput) (*RecommendResult, error) {
	log := logger.WithLogger(ctx, s.logger)

	m, errs := input.Measurements()
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var readingID uuid.UUID
	if id := strings.TrimSpace(input.SoilDataID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeNotFound, MsgSoilDataNotFound)
		}
		readingID = parsed
	}

	started := time.Now()
	prediction, err := s.predictor.Predict(ctx, m)
	elapsed := time.Since(started)
	if err != nil {
		code := shared.CodeInternal
		var de *shared.DomainError
		if errors.As(err, &de) {
			code = de.Code
		}
		if s.metrics != nil {
			s.metrics.RecordPredictionLatency(ctx, elapsed, code)
			s.metrics.RecordPredictionFailure(ctx, code)
		}
		log.Warn("Prediction failed", zap.String("code", code), zap.Error(err))
		if de != nil {
			return nil, err
		}
		return nil, shared.Wrap(err, shared.CodeInternal, "AI model service returned an error")
	}
	if s.metrics != nil {
		s.metrics.RecordPredictionLatency(ctx, elapsed, "success")
	}

	var rec *fertilizer.Recommendation
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		reading, err := s.resolveReading(ctx, repos.Readings(), userID, readingID, m, input.Location)
		if err != nil {
			return err
		}

		rec, err = fertilizer.NewRecommendation(userID, reading.ID, prediction, m)
		if err != nil {
			return err
		}
		if err := repos.Recommendations().Create(ctx, rec); err != nil {
			return shared.Wrap(err, shared.CodeInternal, "Failed to save recommendation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.recRepo.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to load recommendation")
	}

	if s.metrics != nil {
		s.metrics.RecordRecommendation(ctx, string(rec.FertilizerType), m.CropType.String())
	}
	log.Info("Recommendation created",
		zap.String("recommendation_id", rec.ID.String()),
		zap.String("soil_reading_id", rec.SoilReadingID.String()),
		zap.String("fertilizer_type", string(rec.FertilizerType)),
	)

	return &RecommendResult{
		Recommendation: ToRecommendationResponse(stored),
		Prediction:     prediction,
	}, nil
}

func (s *RecommendationService) resolveReading(
	ctx context.Context,
	readings soil.ReadingRepository,
	userID, readingID uuid.UUID,
	m soil.Measurements,
	location string,
) (*soil.SoilReading, error) {
	if readingID != uuid.Nil {
		reading, err := readings.FindByID(ctx, readingID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError(shared.CodeNotFound, MsgSoilDataNotFound)
			}
			return nil, shared.Wrap(err, shared.CodeInternal, "Failed to load soil data")
		}
		if !reading.IsOwnedBy(userID) {
			return nil, shared.NewDomainError(shared.CodeNotFound, MsgSoilDataNotFound)
		}
		return reading, nil
	}

	reading, err := soil.NewSoilReading(userID, m, location)
	if err != nil {
		return nil, err
	}
	if err := readings.Create(ctx, reading); err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to save soil data")
	}
	return reading, nil
}

// History returns the user's most recent recommendations, newest first
func (s *RecommendationService) History(ctx context.Context, userID uuid.UUID) ([]RecommendationResponse, error) {
	recs, err := s.recRepo.FindRecentByUser(ctx, userID, shared.HistoryLimit)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to load recommendation history")
	}
	return ToRecommendationResponses(recs), nil
}

// GetByID returns a recommendation visible to its owner and to administrators
func (s *RecommendationService) GetByID(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*RecommendationResponse, error) {
	rec, err := s.viewable(ctx, userID, role, id)
	if err != nil {
		return nil, err
	}
	return ToRecommendationResponse(rec), nil
}

// SubmitFeedback overwrites the feedback of a recommendation. Only the owner may do this.
func (s *RecommendationService) SubmitFeedback(ctx context.Context, userID, id uuid.UUID, input FeedbackInput) (*RecommendationResponse, error) {
	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	helpful := input.IsHelpful != nil && *input.IsHelpful
	if err := rec.SubmitFeedback(userID, helpful, strings.TrimSpace(input.FeedbackText), s.now()); err != nil {
		return nil, err
	}
	if err := s.recRepo.SaveFeedback(ctx, rec); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, MsgRecommendationNotFound)
		}
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to save feedback")
	}

	logger.WithLogger(ctx, s.logger).Info("Recommendation feedback saved",
		zap.String("recommendation_id", id.String()),
		zap.Bool("helpful", helpful),
	)
	return ToRecommendationResponse(rec), nil
}

func (s *RecommendationService) find(ctx context.Context, id uuid.UUID) (*fertilizer.Recommendation, error) {
	rec, err := s.recRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, MsgRecommendationNotFound)
		}
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to load recommendation")
	}
	return rec, nil
}

func (s *RecommendationService) viewable(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*fertilizer.Recommendation, error) {
	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.CanBeViewedBy(userID, identity.Role(role) == identity.RoleAdmin) {
		return nil, shared.NewDomainError(shared.CodeForbidden, MsgAccessDenied)
	}
	return rec, nil
}
