package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/render/chart"
	"StockDash/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	market  []models.MarketMetric
	vol     []models.Volatility
	sector  []models.SectorReturn
	cum     []models.CumulativeReturn
	monthly []models.MonthlyMover
	corr    []models.CorrelationPair
	err     error
	calls   int
}

func (f *fakeStore) MarketOverview(context.Context) ([]models.MarketMetric, error) {
	f.calls++
	return f.market, f.err
}
func (f *fakeStore) TopVolatility(context.Context) ([]models.Volatility, error) {
	f.calls++
	return f.vol, f.err
}
func (f *fakeStore) SectorReturns(context.Context) ([]models.SectorReturn, error) {
	f.calls++
	return f.sector, f.err
}
func (f *fakeStore) CumulativeReturns(context.Context) ([]models.CumulativeReturn, error) {
	f.calls++
	return f.cum, f.err
}
func (f *fakeStore) MonthlyGainersLosers(context.Context) ([]models.MonthlyMover, error) {
	f.calls++
	return f.monthly, f.err
}
func (f *fakeStore) CorrelationPairs(context.Context) ([]models.CorrelationPair, error) {
	f.calls++
	return f.corr, f.err
}
func (f *fakeStore) Health(context.Context) error { return f.err }

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func seededStore() *fakeStore {
	return &fakeStore{
		market: []models.MarketMetric{
			{Metric: "Total Stocks", Value: 50},
			{Metric: "Average Price", Value: 2345.678},
			{Metric: "Green Stocks", Value: 30},
		},
		vol: []models.Volatility{{Symbol: "ADANIENT", Volatility: 0.041}, {Symbol: "TCS", Volatility: 0.012}},
		sector: []models.SectorReturn{
			{Symbol: "INFY", Sector: "IT", AvgYearlyReturn: 30.1},
			{Symbol: "HDFC", Sector: "Banking", AvgYearlyReturn: 12.25},
			{Symbol: "TCS", Sector: "IT", AvgYearlyReturn: 21.5},
		},
		cum: []models.CumulativeReturn{
			{Symbol: "AAA", Date: day(2), CumulativeReturn: 0.9},
			{Symbol: "AAA", Date: day(1), CumulativeReturn: 0.1},
			{Symbol: "BBB", Date: day(1), CumulativeReturn: 0.3},
			{Symbol: "CCC", Date: day(1), CumulativeReturn: 0.7},
			{Symbol: "DDD", Date: day(1), CumulativeReturn: 0.05},
			{Symbol: "EEE", Date: day(1), CumulativeReturn: 0.6},
			{Symbol: "FFF", Date: day(1), CumulativeReturn: 0.8},
			{Symbol: "GGG", Date: day(1), CumulativeReturn: math.NaN()},
		},
		monthly: []models.MonthlyMover{
			{YearMonth: "2024-02", Symbol: "TCS", MonthlyReturnPct: 8.5, Type: models.MoverGainer},
			{YearMonth: "2023-12", Symbol: "INFY", MonthlyReturnPct: 12, Type: models.MoverGainer},
			{YearMonth: "2023-12", Symbol: "HDFC", MonthlyReturnPct: -2.5, Type: models.MoverLoser},
		},
		corr: []models.CorrelationPair{
			{Symbol: "TCS", CorrelatedSymbol: "TCS", Correlation: 1},
			{Symbol: "TCS", CorrelatedSymbol: "INFY", Correlation: 0.8},
			{Symbol: "HDFC", CorrelatedSymbol: "TCS", Correlation: -0.25},
			{Symbol: "HDFC", CorrelatedSymbol: "TCS", Correlation: -0.3},
		},
	}
}

func TestRender_MarketOverview(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	res, err := uc.Render(context.Background(), models.ViewMarketOverview, models.ViewRequest{})
	require.NoError(t, err)

	assert.Equal(t, "📈 Market Overview", res.View.Header)
	assert.Nil(t, res.Chart)
	assert.Equal(t, []models.KPI{
		{Label: "Total Stocks", Value: "50"},
		{Label: "Average Price", Value: "2345.68"},
		{Label: "Green Stocks", Value: "30"},
		{Label: "Red Stocks", Value: "0"},
	}, res.KPIs)
	require.Len(t, res.Table.Rows, 3)
	assert.Equal(t, []string{"Average Price", "2,345.68"}, res.Table.Rows[1])
}

func TestRender_Volatility(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	res, err := uc.Render(context.Background(), models.ViewVolatility, models.ViewRequest{})
	require.NoError(t, err)
	require.NotNil(t, res.Chart)
	assert.Equal(t, models.ChartBar, res.Chart.Kind)
	assert.Equal(t, "ADANIENT", res.Chart.Series[0].Data[0].Label)
	assert.Equal(t, []string{"ADANIENT", "0.0410"}, res.Table.Rows[0])
}

func TestRender_NonFiniteValuesLeaveCharts(t *testing.T) {
	store := &fakeStore{
		vol: []models.Volatility{{Symbol: "INF", Volatility: math.Inf(1)}, {Symbol: "TCS", Volatility: 0.012}},
		corr: []models.CorrelationPair{
			{Symbol: "TCS", CorrelatedSymbol: "TCS", Correlation: 1},
			{Symbol: "TCS", CorrelatedSymbol: "INFY", Correlation: math.Inf(-1)},
		},
	}
	uc := NewDashboardUseCase(store)

	res, err := uc.Render(context.Background(), models.ViewVolatility, models.ViewRequest{})
	require.NoError(t, err)
	require.Len(t, res.Chart.Series[0].Data, 1)
	assert.Equal(t, "TCS", res.Chart.Series[0].Data[0].Label)
	assert.Equal(t, []string{"INF", ""}, res.Table.Rows[0])
	_, err = json.Marshal(res)
	require.NoError(t, err)

	res, err = uc.Render(context.Background(), models.ViewCorrelationMatrix, models.ViewRequest{})
	require.NoError(t, err)
	assert.Nil(t, res.Chart.Heatmap.Values[0][0])
	assert.Equal(t, 1.0, res.Chart.Heatmap.Min)
	_, err = json.Marshal(res)
	require.NoError(t, err)
}

func TestRender_SectorColorsBySector(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	res, err := uc.Render(context.Background(), models.ViewSectorPerformance, models.ViewRequest{})
	require.NoError(t, err)

	assert.Equal(t, "Average Yearly Return by Sector", res.Chart.Title)
	data := res.Chart.Series[0].Data
	require.Len(t, data, 3)
	assert.Equal(t, data[0].Color, data[2].Color, "INFY and TCS share the IT color")
	assert.NotEqual(t, data[0].Color, data[1].Color)
	assert.Equal(t, []models.LegendItem{
		{Label: "IT", Color: chart.PaletteColor(0)},
		{Label: "Banking", Color: chart.PaletteColor(1)},
	}, res.Chart.Legend)
}

func TestRender_CumulativeTopN(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	res, err := uc.Render(context.Background(), models.ViewCumulativeReturns, models.ViewRequest{})
	require.NoError(t, err)

	assert.Len(t, res.Table.Rows, 8)
	assert.Equal(t, "Top 5 Symbols - Cumulative Returns", res.Chart.Title)
	names := make([]string, 0, len(res.Chart.Series))
	for _, s := range res.Chart.Series {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"AAA", "FFF", "CCC", "EEE", "BBB"}, names)

	aaa := res.Chart.Series[0].Data
	require.Len(t, aaa, 2)
	assert.True(t, aaa[0].Time.Before(*aaa[1].Time), "points sorted by date")

	res, err = uc.Render(context.Background(), models.ViewCumulativeReturns, models.ViewRequest{Top: 2})
	require.NoError(t, err)
	assert.Len(t, res.Chart.Series, 2)
	assert.Equal(t, "Top 2 Symbols - Cumulative Returns", res.Chart.Title)
}

func TestRender_MonthlyDefaultsToFirstMonth(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	res, err := uc.Render(context.Background(), models.ViewMonthlyGainersLosers, models.ViewRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-12", "2024-02"}, res.Months)
	assert.Equal(t, "2023-12", res.Month)
	assert.Len(t, res.Table.Rows, 2)
	assert.Equal(t, "Top 5 Gainers & Losers - 2023-12", res.Chart.Title)
	assert.True(t, res.Chart.ZeroLine)
	assert.Equal(t, chart.ColorGain, res.Chart.Series[0].Data[0].Color)
	assert.Equal(t, chart.ColorLoss, res.Chart.Series[0].Data[1].Color)
}

func TestRender_MonthlySelectedAndUnknown(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	res, err := uc.Render(context.Background(), models.ViewMonthlyGainersLosers, models.ViewRequest{Month: "2024-02"})
	require.NoError(t, err)
	require.Len(t, res.Table.Rows, 1)
	assert.Equal(t, "TCS", res.Table.Rows[0][1])

	_, err = uc.Render(context.Background(), models.ViewMonthlyGainersLosers, models.ViewRequest{Month: "1999-01"})
	assert.ErrorIs(t, err, ErrUnknownMonth)
}

func TestRender_MonthlyAcceptsStoredMonthShape(t *testing.T) {
	store := &fakeStore{monthly: []models.MonthlyMover{
		{YearMonth: "2024-01-01", Symbol: "TCS", MonthlyReturnPct: 3, Type: models.MoverGainer},
		{YearMonth: "2023-12-01", Symbol: "INFY", MonthlyReturnPct: -1, Type: models.MoverLoser},
	}}
	uc := NewDashboardUseCase(store)

	res, err := uc.Render(context.Background(), models.ViewMonthlyGainersLosers, models.ViewRequest{Month: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-01", "2024-01-01"}, res.Months)
	assert.Equal(t, "2024-01-01", res.Month)
	require.Len(t, res.Table.Rows, 1)
	assert.Equal(t, "TCS", res.Table.Rows[0][1])
}

func TestRender_MonthlyEmpty(t *testing.T) {
	uc := NewDashboardUseCase(&fakeStore{})

	res, err := uc.Render(context.Background(), models.ViewMonthlyGainersLosers, models.ViewRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Months)
	assert.Empty(t, res.Table.Rows)
}

func TestPivotCorrelations(t *testing.T) {
	hm := pivotCorrelations(seededStore().corr)

	assert.Equal(t, []string{"HDFC", "TCS"}, hm.Rows)
	assert.Equal(t, []string{"INFY", "TCS"}, hm.Columns)
	require.Len(t, hm.Values, 2)

	assert.Nil(t, hm.Values[0][0], "HDFC/INFY missing")
	require.NotNil(t, hm.Values[0][1])
	assert.Equal(t, -0.3, *hm.Values[0][1], "last duplicate wins")
	assert.Equal(t, 0.8, *hm.Values[1][0])
	assert.Equal(t, 1.0, *hm.Values[1][1])
	assert.Equal(t, -0.3, hm.Min)
	assert.Equal(t, 1.0, hm.Max)
}

func TestRender_CorrelationTable(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	res, err := uc.Render(context.Background(), models.ViewCorrelationMatrix, models.ViewRequest{})
	require.NoError(t, err)

	assert.Equal(t, "Stock Correlation Heatmap", res.Chart.Title)
	assert.Equal(t, "Correlation", res.Chart.Heatmap.Label)
	assert.Equal(t, []string{"HDFC", "", "-0.3000"}, res.Table.Rows[0])
	assert.Equal(t, []string{"TCS", "0.8000", "1.0000"}, res.Table.Rows[1])
}

func TestRender_UnknownView(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	_, err := uc.Render(context.Background(), models.View("nope"), models.ViewRequest{})
	assert.ErrorIs(t, err, models.ErrUnknownView)
}

func TestRender_StoreError(t *testing.T) {
	boom := errors.New("no such table: top10_volatility")
	uc := NewDashboardUseCase(&fakeStore{err: boom})

	_, err := uc.Render(context.Background(), models.ViewVolatility, models.ViewRequest{})
	assert.ErrorIs(t, err, boom)
}

func TestRender_UsesCache(t *testing.T) {
	store := seededStore()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	uc := NewDashboardUseCase(store, WithCache(mc, time.Minute))

	for i := 0; i < 3; i++ {
		_, err := uc.Render(context.Background(), models.ViewVolatility, models.ViewRequest{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.calls)
}

func TestRender_NoCacheReadsFresh(t *testing.T) {
	store := seededStore()
	uc := NewDashboardUseCase(store)

	for i := 0; i < 3; i++ {
		_, err := uc.Render(context.Background(), models.ViewVolatility, models.ViewRequest{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.calls)
}

func TestRenderChart(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	for _, v := range models.Views() {
		b, err := uc.RenderChart(context.Background(), v.View, models.ChartRequest{Width: 600, Height: 400}, chart.FormatSVG)
		if !v.HasChart {
			assert.ErrorIs(t, err, ErrNoChart, v.View)
			continue
		}
		require.NoError(t, err, v.View)
		assert.Contains(t, string(b), "<svg", v.View)
	}
}

func TestExportCSV(t *testing.T) {
	uc := NewDashboardUseCase(seededStore())

	b, err := uc.ExportCSV(context.Background(), models.ViewSectorPerformance, models.ViewRequest{})
	require.NoError(t, err)

	recs, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, []string{"symbol", "sector", "Average Yearly Return (%)"}, recs[0])
	assert.Equal(t, []string{"INFY", "IT", "30.1"}, recs[1])
}

func TestExportCSV_MonthlyFilteredAndNulls(t *testing.T) {
	store := seededStore()
	store.monthly = append(store.monthly, models.MonthlyMover{YearMonth: "2024-02", Symbol: "SBIN", MonthlyReturnPct: math.NaN(), Type: models.MoverLoser})
	uc := NewDashboardUseCase(store)

	b, err := uc.ExportCSV(context.Background(), models.ViewMonthlyGainersLosers, models.ViewRequest{Month: "2024-02"})
	require.NoError(t, err)

	recs, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"2024-02", "SBIN", "", "loser"}, recs[2])

	_, err = uc.ExportCSV(context.Background(), models.ViewMonthlyGainersLosers, models.ViewRequest{Month: "2000-01"})
	assert.ErrorIs(t, err, ErrUnknownMonth)
}

func TestKPIHelpers(t *testing.T) {
	assert.Equal(t, "49", kpiInt(49.9))
	assert.Equal(t, "1,200", kpiInt(1200))
	assert.Equal(t, "0", kpiInt(math.NaN()))
	assert.Equal(t, "10.01", kpiPrice(10.005))
	assert.Equal(t, "0.00", kpiPrice(math.NaN()))
}
