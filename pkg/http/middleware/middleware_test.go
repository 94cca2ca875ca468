package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	applogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw...)
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/panic", func(c echo.Context) error { panic("boom") })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })
	e.GET("/err", func(c echo.Context) error { return errors.New("plain") })
	return e
}

func serve(e *echo.Echo, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecover(t *testing.T) {
	e := newEcho(Recover(applogger.Nop()))

	rec := serve(e, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestRequestLogging_PassesErrorsToHandler(t *testing.T) {
	e := newEcho(RequestLogging(applogger.Nop()))

	assert.Equal(t, http.StatusTeapot, serve(e, http.MethodGet, "/fail", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodGet, "/err", nil).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ok", nil).Code)
}

func TestMetrics(t *testing.T) {
	e := newEcho(Metrics(applogger.Nop(), time.Nanosecond))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusTeapot, serve(e, http.MethodGet, "/fail", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/missing", nil).Code)
}

func TestCORS(t *testing.T) {
	e := newEcho(CORS(CORSConfig{
		AllowOrigins:  []string{"https://dash.example"},
		AllowMethods:  []string{http.MethodGet},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
		MaxAge:        600,
	}))

	rec := serve(e, http.MethodGet, "/ok", map[string]string{"Origin": "https://dash.example"})
	assert.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, echo.HeaderContentDisposition, rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/ok", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(e, http.MethodOptions, "/ok", map[string]string{
		"Origin":                        "https://dash.example",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(429))
	assert.Equal(t, "5xx", statusClass(503))
}
