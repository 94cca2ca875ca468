package api

import (
	"net/http"
	"strconv"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/render/chart"
	rendermetrics "StockDash/internal/service/metrics"
	"StockDash/internal/service/ratelimit"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	xlogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChartHandler renders chart images. Rendering is CPU bound, so requests are
// throttled per client IP.
type ChartHandler struct {
	logger  *xlogger.Logger
	uc      *usecase.DashboardUseCase
	limiter *ratelimit.Limiter
	width   int
	height  int
}

func NewChartHandler(logger *xlogger.Logger, uc *usecase.DashboardUseCase, limiter *ratelimit.Limiter, width, height int) *ChartHandler {
	return &ChartHandler{logger: logger, uc: uc, limiter: limiter, width: width, height: height}
}

func (h *ChartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/views/:view/chart.svg", h.chart(chart.FormatSVG))
	e.GET("/views/:view/chart.png", h.chart(chart.FormatPNG))
}

func (h *ChartHandler) chart(format chart.Format) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			rendermetrics.ChartsThrottled.Inc()
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many chart requests"))
		}

		view, err := models.ParseView(c.Param("view"))
		if err != nil {
			return h.fail(c, "unknown", err)
		}

		req := &models.ChartRequest{}
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
		if req.Width == 0 {
			req.Width = h.width
		}
		if req.Height == 0 {
			req.Height = h.height
		}

		b, err := h.uc.RenderChart(c.Request().Context(), view, *req, format)
		if err != nil {
			return h.fail(c, string(view), err)
		}
		rendermetrics.RenderLatency.WithLabelValues(string(view), string(format)).Observe(time.Since(start).Seconds())

		c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
		return c.Blob(http.StatusOK, format.ContentType(), b)
	}
}

func (h *ChartHandler) fail(c echo.Context, view string, err error) error {
	appErr := ToAppError(err)
	rendermetrics.RenderErrors.WithLabelValues(view, strconv.Itoa(appErr.Status)).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("chart render error", xlogger.String("view", view), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
