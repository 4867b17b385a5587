package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	soilapp "github.com/smartfertilizer/backend/internal/application/soil"
	"github.com/smartfertilizer/backend/internal/interfaces/http/middleware"
)

// SoilService is the soil reading use case surface used by SoilHandler
type SoilService interface {
	Submit(ctx context.Context, userID uuid.UUID, input soilapp.ReadingInput) (*soilapp.ReadingResponse, error)
	History(ctx context.Context, userID uuid.UUID) ([]soilapp.ReadingResponse, error)
	ExportHistory(ctx context.Context, userID uuid.UUID) (*soilapp.Export, error)
}

// SoilHandler handles soil reading endpoints
type SoilHandler struct {
	BaseHandler
	soilService SoilService
}

// NewSoilHandler creates a new soil handler
func NewSoilHandler(base BaseHandler, soilService SoilService) *SoilHandler {
	return &SoilHandler{
		BaseHandler: base,
		soilService: soilService,
	}
}

// Submit godoc
// @Summary      Store a soil reading
// @Description  Numeric fields accept numbers or numeric strings. Every invalid field is reported.
// @Tags         soil
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body soilapp.ReadingInput true "Soil reading"
// @Success      201 {object} dto.Response{data=soilapp.ReadingResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /soil/submit [post]
func (h *SoilHandler) Submit(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req soilapp.ReadingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	reading, err := h.soilService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, reading)
}

// History godoc
// @Summary      Soil reading history
// @Description  The 50 most recent readings of the current user, newest first
// @Tags         soil
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=[]soilapp.ReadingResponse}
// @Failure      401 {object} dto.Response
// @Router       /soil/history [get]
func (h *SoilHandler) History(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	readings, err := h.soilService.History(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, readings, len(readings))
}

// ExportHistory godoc
// @Summary      Export soil reading history
// @Tags         soil
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} binary
// @Failure      401 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /soil/history/export [get]
func (h *SoilHandler) ExportHistory(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	export, err := h.soilService.ExportHistory(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}
