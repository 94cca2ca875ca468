package api

import (
	"context"
	"time"

	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	xlogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	logger *xlogger.Logger
	uc     *usecase.DashboardUseCase
}

func NewHealthHandler(logger *xlogger.Logger, uc *usecase.DashboardUseCase) *HealthHandler {
	return &HealthHandler{logger: logger, uc: uc}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Live)
	e.GET("/readyz", h.Ready)
}

func (h *HealthHandler) Live(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Ready pings the backing store.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.uc.Health(ctx); err != nil {
		h.logger.Warn("readiness check failed", xlogger.Error(err))
		return xhttp.ServiceUnavailableResponse(c, map[string]string{"status": "unavailable"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ready"})
}
