package soil

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// HistoryExporter renders a reading history as a downloadable workbook
type HistoryExporter interface {
	SoilHistoryWorkbook(ctx context.Context, readings []*soil.SoilReading) ([]byte, error)
}

// Service handles soil reading submission and history
type Service struct {
	readingRepo soil.ReadingRepository
	exporter    HistoryExporter
	logger      *zap.Logger
}

// NewService creates a new soil data service
func NewService(readingRepo soil.ReadingRepository, logger *zap.Logger) *Service {
	return &Service{
		readingRepo: readingRepo,
		logger:      logger,
	}
}

// SetExporter enables ExportHistory
func (s *Service) SetExporter(exporter HistoryExporter) {
	s.exporter = exporter
}

// Submit validates and stores a reading owned by userID
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, input ReadingInput) (*ReadingResponse, error) {
	m, errs := input.Measurements()
	if err := errs.Err(); err != nil {
		return nil, err
	}

	reading, err := soil.NewSoilReading(userID, m, input.Location)
	if err != nil {
		return nil, err
	}
	if err := s.readingRepo.Create(ctx, reading); err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to save soil data")
	}

	stored, err := s.readingRepo.FindByID(ctx, reading.ID)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to load soil data")
	}

	logger.WithLogger(ctx, s.logger).Info("Soil reading stored",
		zap.String("reading_id", reading.ID.String()),
		zap.String("crop_type", m.CropType.String()),
	)
	return ToReadingResponse(stored), nil
}

// History returns the user's most recent readings, newest first
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]ReadingResponse, error) {
	readings, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToReadingResponses(readings), nil
}

// ExportHistory returns the same readings as History in a spreadsheet
func (s *Service) ExportHistory(ctx context.Context, userID uuid.UUID) (*Export, error) {
	if s.exporter == nil {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Export is not available")
	}
	readings, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	content, err := s.exporter.SoilHistoryWorkbook(ctx, readings)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to export soil history")
	}
	return &Export{
		Filename:    fmt.Sprintf("soil-history-%s.xlsx", userID.String()[:8]),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func (s *Service) history(ctx context.Context, userID uuid.UUID) ([]*soil.SoilReading, error) {
	readings, err := s.readingRepo.FindRecentByUser(ctx, userID, shared.HistoryLimit)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to load soil history")
	}
	return readings, nil
}
