package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"github.com/smartfertilizer/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Health states
const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"

	DatabaseConnected    = "Connected"
	DatabaseDisconnected = "Disconnected"
	AIAvailable          = "Available"
	AIUnavailable        = "Unavailable"

	MsgServerRunning  = "Server is running"
	MsgServerDegraded = "Server is running but the database is unavailable"
)

const defaultProbeTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and downstream state
type HealthHandler struct {
	database     HealthChecker
	predictor    HealthChecker
	probeTimeout time.Duration
	now          func() time.Time
}

// NewHealthHandler creates a health handler. A nil checker counts as down.
func NewHealthHandler(database, predictor HealthChecker) *HealthHandler {
	return &HealthHandler{
		database:     database,
		predictor:    predictor,
		probeTimeout: defaultProbeTimeout,
		now:          time.Now,
	}
}

// Health godoc
// @Summary      Health check
// @Description  Responds 200 while the database is reachable and 503 otherwise. The AI service state is informational.
// @Tags         health
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.probeTimeout)
	defer cancel()

	var dbErr, aiErr error
	g := new(errgroup.Group)
	g.Go(func() error {
		dbErr = probe(ctx, h.database)
		return nil
	})
	g.Go(func() error {
		aiErr = probe(ctx, h.predictor)
		return nil
	})
	_ = g.Wait()

	resp := dto.HealthResponse{
		Status:    StatusOK,
		Message:   MsgServerRunning,
		Database:  DatabaseConnected,
		AIService: AIAvailable,
		Time:      h.now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if aiErr != nil {
		resp.AIService = AIUnavailable
	}
	if dbErr != nil {
		logger.L(c.Request.Context()).Warn("Health check: database unreachable", zap.Error(dbErr))
		resp.Status = StatusDegraded
		resp.Message = MsgServerDegraded
		resp.Database = DatabaseDisconnected
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

func probe(ctx context.Context, checker HealthChecker) error {
	if checker == nil {
		return errNoChecker
	}
	return checker.Ping(ctx)
}

var errNoChecker = errors.New("not configured")
