package fertilizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ReportRenderer turns a recommendation into a printable PDF
type ReportRenderer interface {
	RenderRecommendation(ctx context.Context, rec *fertilizer.Recommendation) ([]byte, error)
}

// ReportArchive stores rendered reports in object storage
type ReportArchive interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ReportDelivery selects how a report is returned
type ReportDelivery string

const (
	DeliveryInline ReportDelivery = "inline" // PDF bytes in the response
	DeliveryURL    ReportDelivery = "url"    // archived, presigned link returned
)

// SetReportRenderer enables Report
func (s *RecommendationService) SetReportRenderer(renderer ReportRenderer) {
	s.renderer = renderer
}

// SetReportArchive enables URL delivery of reports
func (s *RecommendationService) SetReportArchive(archive ReportArchive) {
	s.archive = archive
}

// Report renders one recommendation as a PDF. Access follows GetByID.
func (s *RecommendationService) Report(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID, delivery ReportDelivery) (*Report, error) {
	if s.renderer == nil {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Report rendering is not available")
	}
	if delivery == DeliveryURL && s.archive == nil {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Report storage is not configured")
	}

	rec, err := s.viewable(ctx, userID, role, id)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.RenderRecommendation(ctx, rec)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to render report")
	}

	report := &Report{
		Filename: fmt.Sprintf("recommendation-%s.pdf", rec.ID.String()[:8]),
		Content:  content,
	}
	if delivery != DeliveryURL {
		return report, nil
	}

	key := fmt.Sprintf("reports/%s/%s.pdf", rec.UserID, rec.ID)
	if err := s.archive.Upload(ctx, key, content, "application/pdf"); err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to archive report")
	}
	url, expiresAt, err := s.archive.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to create report link")
	}
	report.URL = url
	report.ExpiresAt = expiresAt

	logger.WithLogger(ctx, s.logger).Info("Report archived",
		zap.String("recommendation_id", rec.ID.String()),
		zap.String("storage_key", key),
	)
	return report, nil
}
