package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/smartfertilizer/backend/internal/interfaces/http/middleware"
)

// LocationHandler pre-fills readings from coordinates
type LocationHandler struct {
	BaseHandler
	provider soil.LocationProvider
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(base BaseHandler, provider soil.LocationProvider) *LocationHandler {
	return &LocationHandler{
		BaseHandler: base,
		provider:    provider,
	}
}

// FetchLocationData godoc
// @Summary      Estimate soil values from coordinates
// @Description  Combines live weather, soil property and reverse geocoding data. Unavailable sources fall back to stable estimates.
// @Tags         fertilizer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body FetchLocationRequest true "Coordinates"
// @Success      200 {object} dto.Response{data=soil.LocationEstimate}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /fertilizer/fetch-location-data [post]
func (h *LocationHandler) FetchLocationData(c *gin.Context) {
	var req FetchLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	estimate, err := h.provider.FetchByCoordinates(c.Request.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, estimate)
}
