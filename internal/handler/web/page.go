// Package web serves the dashboard pages.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/handler/api"
	"StockDash/internal/render/chart"
	"StockDash/internal/render/table"
	rendermetrics "StockDash/internal/service/metrics"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	xlogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "templates/*.html"))

// PageHandler renders the dashboard: sidebar menu plus one view.
type PageHandler struct {
	logger      *xlogger.Logger
	uc          *usecase.DashboardUseCase
	title       string
	defaultView models.View
}

func NewPageHandler(logger *xlogger.Logger, uc *usecase.DashboardUseCase, title string, defaultView models.View) *PageHandler {
	if _, err := models.ParseView(string(defaultView)); err != nil {
		defaultView = models.Views()[0].View
	}
	return &PageHandler{logger: logger, uc: uc, title: title, defaultView: defaultView}
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.Renderer = renderer{}
	e.GET("/", h.Index)
	e.GET("/views/:view", h.View)
}

type pageData struct {
	Title     string
	Menu      []models.ViewInfo
	Active    models.View
	Result    *models.Result
	Table     template.HTML
	Chart     template.HTML
	PNGURL    string
	ExportURL string
}

type errorData struct {
	Title   string
	Menu    []models.ViewInfo
	Active  models.View
	Status  int
	Message string
}

// Index redirects to the landing view.
func (h *PageHandler) Index(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/views/"+string(h.defaultView))
}

// View renders one dashboard view.
func (h *PageHandler) View(c echo.Context) error {
	start := time.Now()
	view, err := models.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, "", err)
	}

	req := &models.ViewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.errorPage(c, view, http.StatusBadRequest, validationMessage(verr))
	}

	res, err := h.uc.Render(c.Request().Context(), view, *req)
	if err != nil {
		return h.fail(c, view, err)
	}

	data := pageData{
		Title:  h.title,
		Menu:   h.uc.Views(),
		Active: view,
		Result: res,
	}
	if res.Table != nil {
		html, err := table.HTML(res.Table)
		if err != nil {
			return h.fail(c, view, err)
		}
		data.Table = template.HTML(html)
	}

	q := url.Values{}
	if res.Month != "" {
		q.Set("month", res.Month)
	}
	if req.Top > 0 {
		q.Set("top", strconv.Itoa(req.Top))
	}
	// The chart is drawn from res so a selection costs a single query.
	if res.Chart != nil {
		var buf bytes.Buffer
		if err := chart.Render(&buf, res.Chart, chart.Options{Format: chart.FormatSVG}); err != nil {
			return h.fail(c, view, err)
		}
		data.Chart = template.HTML(buf.String())
		data.PNGURL = withQuery("/views/"+string(view)+"/chart.png", q)
	}
	data.ExportURL = withQuery("/api/views/"+string(view)+"/export.csv", q)

	rendermetrics.RenderLatency.WithLabelValues(string(view), "html").Observe(time.Since(start).Seconds())
	return c.Render(http.StatusOK, "page.html", data)
}

func (h *PageHandler) fail(c echo.Context, view models.View, err error) error {
	appErr := api.ToAppError(err)
	label := string(view)
	if label == "" {
		label = "unknown"
	}
	rendermetrics.RenderErrors.WithLabelValues(label, strconv.Itoa(appErr.Status)).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("page render error", xlogger.String("view", label), xlogger.Error(err))
	}
	return h.errorPage(c, view, appErr.Status, appErr.Message)
}

func (h *PageHandler) errorPage(c echo.Context, view models.View, status int, msg string) error {
	return c.Render(status, "error.html", errorData{
		Title:   h.title,
		Menu:    h.uc.Views(),
		Active:  view,
		Status:  status,
		Message: msg,
	})
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func validationMessage(verr interface{}) string {
	errs, ok := verr.([]xhttp.ValidationError)
	if !ok || len(errs) == 0 {
		return "invalid request"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// renderer adapts the embedded templates to echo.Renderer.
type renderer struct{}

func (renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t := pages.Lookup(name)
	if t == nil {
		return errors.New("template not found: " + name)
	}
	return t.Execute(w, data)
}
