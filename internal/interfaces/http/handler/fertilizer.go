package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/application/fertilizer"
	"github.com/smartfertilizer/backend/internal/interfaces/http/middleware"
)

// RecommendationService is the recommendation use case surface used by FertilizerHandler
type RecommendationService interface {
	Recommend(ctx context.Context, userID uuid.UUID, input fertilizer.RecommendInput) (*fertilizer.RecommendResult, error)
	History(ctx context.Context, userID uuid.UUID) ([]fertilizer.RecommendationResponse, error)
	GetByID(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*fertilizer.RecommendationResponse, error)
	SubmitFeedback(ctx context.Context, userID, id uuid.UUID, input fertilizer.FeedbackInput) (*fertilizer.RecommendationResponse, error)
	Report(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID, delivery fertilizer.ReportDelivery) (*fertilizer.Report, error)
}

// FertilizerHandler handles recommendation endpoints
type FertilizerHandler struct {
	BaseHandler
	recommendations RecommendationService
}

// NewFertilizerHandler creates a new fertilizer handler
func NewFertilizerHandler(base BaseHandler, recommendations RecommendationService) *FertilizerHandler {
	return &FertilizerHandler{
		BaseHandler:     base,
		recommendations: recommendations,
	}
}

// Recommend godoc
// @Summary      Get a fertilizer recommendation
// @Description  Validates the reading, asks the prediction service and stores the reading and recommendation together.
// @Description  Pass soilDataId to reuse a stored reading.
// @Tags         fertilizer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body fertilizer.RecommendInput true "Soil reading"
// @Success      200 {object} dto.Response{data=fertilizer.RecommendResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /fertilizer/recommend [post]
func (h *FertilizerHandler) Recommend(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req fertilizer.RecommendInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	result, err := h.recommendations.Recommend(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// History godoc
// @Summary      Recommendation history
// @Description  The 50 most recent recommendations of the current user, newest first
// @Tags         fertilizer
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=[]fertilizer.RecommendationResponse}
// @Failure      401 {object} dto.Response
// @Router       /fertilizer/history [get]
func (h *FertilizerHandler) History(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	recs, err := h.recommendations.History(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, recs, len(recs))
}

// GetByID godoc
// @Summary      Get one recommendation
// @Description  Visible to its owner and to admins
// @Tags         fertilizer
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recommendation ID" format(uuid)
// @Success      200 {object} dto.Response{data=fertilizer.RecommendationResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /fertilizer/{id} [get]
func (h *FertilizerHandler) GetByID(c *gin.Context) {
	userID, role, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	rec, err := h.recommendations.GetByID(c.Request.Context(), userID, role, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rec)
}

// SubmitFeedback godoc
// @Summary      Rate a recommendation
// @Description  Only the owner can leave feedback; a new submission replaces the previous one.
// @Tags         fertilizer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recommendation ID" format(uuid)
// @Param        request body fertilizer.FeedbackInput true "Feedback"
// @Success      200 {object} dto.Response{data=fertilizer.RecommendationResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /fertilizer/{id}/feedback [patch]
func (h *FertilizerHandler) SubmitFeedback(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req fertilizer.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	rec, err := h.recommendations.SubmitFeedback(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rec)
}

// Report godoc
// @Summary      Recommendation report
// @Description  Printable PDF. With delivery=url the report is archived and a presigned link is returned.
// @Tags         fertilizer
// @Produce      application/pdf
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recommendation ID" format(uuid)
// @Param        delivery query string false "inline or url" Enums(inline, url)
// @Success      200 {file} binary
// @Success      201 {object} dto.Response{data=ReportLinkResponse}
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /fertilizer/{id}/report [get]
func (h *FertilizerHandler) Report(c *gin.Context) {
	userID, role, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query reportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	delivery := fertilizer.DeliveryInline
	if query.Delivery != "" {
		delivery = fertilizer.ReportDelivery(query.Delivery)
	}

	report, err := h.recommendations.Report(c.Request.Context(), userID, role, id, delivery)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if delivery == fertilizer.DeliveryURL {
		h.Created(c, ReportLinkResponse{
			Filename:  report.Filename,
			URL:       report.URL,
			ExpiresAt: report.ExpiresAt,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, "application/pdf", report.Content)
}
