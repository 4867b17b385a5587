package router

import (
	"github.com/gin-gonic/gin"
	"github.com/smartfertilizer/backend/internal/interfaces/http/handler"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Auth       *handler.AuthHandler
	Soil       *handler.SoilHandler
	Fertilizer *handler.FertilizerHandler
	Location   *handler.LocationHandler
	Health     *handler.HealthHandler
}

// Guards are the per-group middleware. A nil guard is skipped.
type Guards struct {
	// Authenticate rejects requests without a valid bearer token
	Authenticate gin.HandlerFunc
	// AuthRateLimit throttles the public account endpoints
	AuthRateLimit gin.HandlerFunc
}

// AuthRoutes builds the /auth group
func AuthRoutes(h *handler.AuthHandler, g Guards) *DomainGroup {
	routes := NewDomainGroup("auth", "/auth")

	public := routes.Group("auth-public", "").Use(g.AuthRateLimit)
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/forgot-password", h.ForgotPassword)
	public.POST("/reset-password/:token", h.ResetPassword)

	routes.Group("auth-session", "").Use(g.Authenticate).GET("/me", h.Me)
	return routes
}

// SoilRoutes builds the /soil group
func SoilRoutes(h *handler.SoilHandler, g Guards) *DomainGroup {
	routes := NewDomainGroup("soil", "/soil").Use(g.Authenticate)
	routes.POST("/submit", h.Submit)
	routes.GET("/history", h.History)
	routes.GET("/history/export", h.ExportHistory)
	return routes
}

// FertilizerRoutes builds the /fertilizer group. Static paths are registered
// alongside /:id, which gin resolves without conflict.
func FertilizerRoutes(h *handler.FertilizerHandler, loc *handler.LocationHandler, g Guards) *DomainGroup {
	routes := NewDomainGroup("fertilizer", "/fertilizer").Use(g.Authenticate)
	routes.POST("/recommend", h.Recommend)
	routes.GET("/history", h.History)
	routes.POST("/fetch-location-data", loc.FetchLocationData)
	routes.GET("/:id", h.GetByID)
	routes.PATCH("/:id/feedback", h.SubmitFeedback)
	routes.GET("/:id/report", h.Report)
	return routes
}

// HealthRoutes builds the /health group
func HealthRoutes(h *handler.HealthHandler) *DomainGroup {
	return NewDomainGroup("health", "/health").GET("", h.Health)
}

// RegisterAPI mounts every group under the router's base path and the
// health check at the root as well.
func RegisterAPI(engine *gin.Engine, r *Router, h Handlers, g Guards) {
	r.Register(AuthRoutes(h.Auth, g)).
		Register(SoilRoutes(h.Soil, g)).
		Register(FertilizerRoutes(h.Fertilizer, h.Location, g)).
		Register(HealthRoutes(h.Health))

	engine.GET("/health", h.Health.Health)
}
