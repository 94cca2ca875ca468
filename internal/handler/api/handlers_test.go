package api_test

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"StockDash/internal/domain/models"
	"StockDash/internal/handler/api"
	"StockDash/internal/repository"
	"StockDash/internal/service/ratelimit"
	"StockDash/internal/testutil"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, dbPath string, limiter *ratelimit.Limiter) *xhttp.Server {
	t.Helper()
	client, err := sqlite.NewClient(sqlite.WithPath(dbPath), sqlite.WithReadOnly(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	l := applogger.Nop()
	uc := usecase.NewDashboardUseCase(repository.NewSQLStore(client.DB()), usecase.WithLogger(l))
	return xhttp.NewServer([]xhttp.Handler{
		api.NewDashboardHandler(l, uc),
		api.NewChartHandler(l, uc, limiter, 600, 400),
		api.NewHealthHandler(l, uc),
	}, xhttp.WithMetrics("", 0))
}

func get(s *xhttp.Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestListViews(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	rec := get(s, "/api/views")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Rows  []models.ViewInfo `json:"rows"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.EqualValues(t, 6, list.Total)
	assert.Equal(t, models.ViewMarketOverview, list.Rows[0].View)
	assert.Equal(t, models.ViewCorrelationMatrix, list.Rows[5].View)
}

func TestViewEndpoints(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	for _, vi := range models.Views() {
		t.Run(string(vi.View), func(t *testing.T) {
			rec := get(s, "/api/views/"+string(vi.View))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var res models.Result
			require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
			assert.Equal(t, vi.Header, res.View.Header)
			require.NotNil(t, res.Table)
			assert.NotEmpty(t, res.Table.Rows)
			assert.Equal(t, vi.HasChart, res.Chart != nil)
		})
	}
}

func TestViewMarketOverviewKPIs(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	rec := get(s, "/api/views/market-overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.Result
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	require.Len(t, res.KPIs, 4)
	assert.Equal(t, "50", res.KPIs[0].Value)
	assert.Equal(t, "2345.68", res.KPIs[1].Value)
}

func TestViewMonthSelection(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	rec := get(s, "/api/views/monthly-gainers-losers?month=2024-02")
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.Result
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	assert.Equal(t, "2024-02", res.Month)
	assert.Equal(t, []string{"2023-12", "2024-02"}, res.Months)
	assert.Len(t, res.Table.Rows, 2)
}

func TestViewErrors(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown view", "/api/views/nope", http.StatusNotFound},
		{"month not offered", "/api/views/monthly-gainers-losers?month=2024-13", http.StatusBadRequest},
		{"absent month", "/api/views/monthly-gainers-losers?month=1999-01", http.StatusBadRequest},
		{"top out of range", "/api/views/cumulative-returns?top=50", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(s, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, decode(t, rec).Status)
		})
	}
}

func TestViewMissingTable(t *testing.T) {
	s := newServer(t, testutil.DBWithout(t, "top10_volatility"), nil)

	rec := get(s, "/api/views/volatility")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "no such table")

	rec = get(s, "/api/views/market-overview")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestViewWithInfiniteValue(t *testing.T) {
	s := newServer(t, testutil.StatsDBWith(t, `INSERT INTO top10_volatility VALUES ('INF', 9e999);`), nil)

	rec := get(s, "/api/views/volatility")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.Result
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	for _, p := range res.Chart.Series[0].Data {
		assert.NotEqual(t, "INF", p.Label)
	}
}

func TestStoredMonthValues(t *testing.T) {
	s := newServer(t, testutil.StatsDBWith(t, `
DELETE FROM monthly_gainers_losers;
INSERT INTO monthly_gainers_losers VALUES
	('2023-12-01', 'INFY', 12.0, 'gainer'), ('2024-01-01', 'TCS', 8.5, 'gainer');
`), nil)

	rec := get(s, "/api/views/monthly-gainers-losers?month=2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.Result
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	assert.Equal(t, "2024-01-01", res.Month)
	assert.Equal(t, []string{"2023-12-01", "2024-01-01"}, res.Months)
}

func TestExportCSV(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	rec := get(s, "/api/views/sector-performance/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="sector-performance.csv"`)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"symbol", "sector", "Average Yearly Return (%)"}, records[0])
	assert.Equal(t, "INFY", records[1][0])
}

func TestExportCSVMonthFilename(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	rec := get(s, "/api/views/monthly-gainers-losers/export.csv?month=2023-12")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "monthly-gainers-losers-2023-12.csv")
}

func TestCharts(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	titles := map[models.View]string{
		models.ViewVolatility:           "Top 10 Most Volatile Stocks",
		models.ViewSectorPerformance:    "Average Yearly Return by Sector",
		models.ViewCumulativeReturns:    "Top 5 Symbols - Cumulative Returns",
		models.ViewMonthlyGainersLosers: "Top 5 Gainers &amp; Losers - 2023-12",
		models.ViewCorrelationMatrix:    "Stock Correlation Heatmap",
	}
	for _, vi := range models.Views() {
		if !vi.HasChart {
			continue
		}
		t.Run(string(vi.View), func(t *testing.T) {
			rec := get(s, "/views/"+string(vi.View)+"/chart.svg")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

			body := rec.Body.String()
			title := regexp.MustCompile(`<text [^>]*>` + regexp.QuoteMeta(titles[vi.View]) + `</text>`).FindString(body)
			require.NotEmpty(t, title, "title missing")
			assert.NotContains(t, title, "transform")

			// the image must be well-formed XML to load in a browser
			dec := xml.NewDecoder(strings.NewReader(body))
			for {
				_, err := dec.Token()
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err)
			}
		})
	}

	rec := get(s, "/views/volatility/chart.png?width=300&height=200")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestChartErrors(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	assert.Equal(t, http.StatusNotFound, get(s, "/views/market-overview/chart.svg").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/views/nope/chart.svg").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/views/volatility/chart.svg?width=10").Code)
}

func TestChartRateLimit(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), ratelimit.New(1, 0))

	assert.Equal(t, http.StatusOK, get(s, "/views/volatility/chart.svg").Code)
	rec := get(s, "/views/volatility/chart.svg")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, decode(t, rec).Status)
}

func TestHealth(t *testing.T) {
	s := newServer(t, testutil.StatsDB(t), nil)

	assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(s, "/readyz").Code)
}
