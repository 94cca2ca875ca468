package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"StockDash/internal/domain/models"
	rendermetrics "StockDash/internal/service/metrics"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	xlogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves view data as JSON and CSV.
type DashboardHandler struct {
	logger *xlogger.Logger
	uc     *usecase.DashboardUseCase
}

func NewDashboardHandler(logger *xlogger.Logger, uc *usecase.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{logger: logger, uc: uc}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/views", h.List)
	g.GET("/views/:view", h.View)
	g.GET("/views/:view/export.csv", h.Export)
}

// List returns the sidebar menu.
func (h *DashboardHandler) List(c echo.Context) error {
	views := h.uc.Views()
	return xhttp.ListResponse(c, views, int64(len(views)))
}

// View returns table, KPIs, chart spec and months of one view.
func (h *DashboardHandler) View(c echo.Context) error {
	start := time.Now()
	view, err := models.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, c.Param("view"), "json", err)
	}

	req := &models.ViewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Render(c.Request().Context(), view, *req)
	if err != nil {
		return h.fail(c, string(view), "json", err)
	}
	rendermetrics.RenderLatency.WithLabelValues(string(view), "json").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

// Export streams the rows behind a view as CSV.
func (h *DashboardHandler) Export(c echo.Context) error {
	start := time.Now()
	view, err := models.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, c.Param("view"), "csv", err)
	}

	req := &models.ViewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	b, err := h.uc.ExportCSV(c.Request().Context(), view, *req)
	if err != nil {
		return h.fail(c, string(view), "csv", err)
	}
	rendermetrics.RenderLatency.WithLabelValues(string(view), "csv").Observe(time.Since(start).Seconds())

	filename := string(view)
	if req.Month != "" && view == models.ViewMonthlyGainersLosers {
		filename += "-" + req.Month
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename+".csv"))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", b)
}

func (h *DashboardHandler) fail(c echo.Context, view, format string, err error) error {
	appErr := ToAppError(err)
	if models.View(view).Info().View == "" {
		view = "unknown"
	}
	rendermetrics.RenderErrors.WithLabelValues(view, strconv.Itoa(appErr.Status)).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("view usecase error",
			xlogger.String("view", view),
			xlogger.String("format", format),
			xlogger.Error(err),
		)
	}
	return xhttp.AppErrorResponse(c, appErr)
}
