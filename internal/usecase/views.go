package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/render/chart"
	"StockDash/internal/render/table"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// finite excludes NULLs (read as NaN) and infinities, which neither charts
// nor JSON can carry.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func textCol(key string) models.Column {
	return models.Column{Key: key, Label: key, Type: "text", Align: "left"}
}

func numCol(key string) models.Column {
	return models.Column{Key: key, Label: key, Type: "number", Align: "right"}
}

func buildMarketOverview(rows []models.MarketMetric) *models.Result {
	metrics := make(map[string]float64, len(rows))
	t := &models.Table{Columns: []models.Column{textCol("metric"), numCol("value")}}
	for _, r := range rows {
		metrics[r.Metric] = r.Value
		t.Rows = append(t.Rows, []string{r.Metric, table.Number(r.Value, 2)})
	}

	return &models.Result{
		KPIs: []models.KPI{
			{Label: models.MetricTotalStocks, Value: kpiInt(metrics[models.MetricTotalStocks])},
			{Label: models.MetricAveragePrice, Value: kpiPrice(metrics[models.MetricAveragePrice])},
			{Label: models.MetricGreenStocks, Value: kpiInt(metrics[models.MetricGreenStocks])},
			{Label: models.MetricRedStocks, Value: kpiInt(metrics[models.MetricRedStocks])},
		},
		Table: t,
	}
}

// kpiInt truncates toward zero; missing or NULL values read as 0.
func kpiInt(v float64) string {
	if !finite(v) {
		v = 0
	}
	return humanize.Comma(decimal.NewFromFloat(v).IntPart())
}

// kpiPrice rounds half away from zero to two decimals.
func kpiPrice(v float64) string {
	if !finite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

func buildVolatility(rows []models.Volatility) *models.Result {
	t := &models.Table{Columns: []models.Column{textCol("symbol"), numCol("Volatility")}}
	points := make([]models.ChartPoint, 0, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Symbol, table.Number(r.Volatility, 4)})
		if finite(r.Volatility) {
			points = append(points, models.ChartPoint{Label: r.Symbol, Value: r.Volatility})
		}
	}

	return &models.Result{
		Table: t,
		Chart: &models.Chart{
			Kind:   models.ChartBar,
			Title:  "Top 10 Most Volatile Stocks",
			XAxis:  "symbol",
			YAxis:  "Volatility",
			Series: []models.ChartSeries{{Name: "Volatility", Color: chart.PaletteColor(0), Data: points}},
		},
	}
}

func buildSectorPerformance(rows []models.SectorReturn) *models.Result {
	const retCol = "Average Yearly Return (%)"
	t := &models.Table{Columns: []models.Column{textCol("symbol"), textCol("sector"), numCol(retCol)}}

	// sectors are colored in order of first appearance
	colors := make(map[string]string)
	var legend []models.LegendItem
	points := make([]models.ChartPoint, 0, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Symbol, r.Sector, table.Number(r.AvgYearlyReturn, 2)})

		col, ok := colors[r.Sector]
		if !ok {
			col = chart.PaletteColor(len(colors))
			colors[r.Sector] = col
			legend = append(legend, models.LegendItem{Label: r.Sector, Color: col})
		}
		if finite(r.AvgYearlyReturn) {
			points = append(points, models.ChartPoint{Label: r.Symbol, Value: r.AvgYearlyReturn, Color: col})
		}
	}

	return &models.Result{
		Table: t,
		Chart: &models.Chart{
			Kind:     models.ChartBar,
			Title:    "Average Yearly Return by Sector",
			XAxis:    "symbol",
			YAxis:    retCol,
			ZeroLine: true,
			Series:   []models.ChartSeries{{Name: retCol, Data: points}},
			Legend:   legend,
		},
	}
}

func buildCumulativeReturns(rows []models.CumulativeReturn, topN int) *models.Result {
	if topN <= 0 {
		topN = DefaultTopN
	}
	t := &models.Table{Columns: []models.Column{textCol("symbol"), {Key: "date", Label: "date", Type: "date", Align: "left"}, numCol("cumulative_return")}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Symbol, formatDate(r.Date), table.Number(r.CumulativeReturn, 4)})
	}

	top := topSymbolsByMax(rows, topN)
	bySymbol := make(map[string][]models.CumulativeReturn, len(top))
	for _, r := range rows {
		bySymbol[r.Symbol] = append(bySymbol[r.Symbol], r)
	}

	series := make([]models.ChartSeries, 0, len(top))
	for i, sym := range top {
		pts := bySymbol[sym]
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].Date.Before(pts[b].Date) })

		data := make([]models.ChartPoint, 0, len(pts))
		for _, p := range pts {
			if !finite(p.CumulativeReturn) || p.Date.IsZero() {
				continue
			}
			d := p.Date
			data = append(data, models.ChartPoint{Time: &d, Value: p.CumulativeReturn})
		}
		series = append(series, models.ChartSeries{Name: sym, Color: chart.PaletteColor(i), Data: data})
	}

	return &models.Result{
		Table: t,
		Chart: &models.Chart{
			Kind:   models.ChartLine,
			Title:  fmt.Sprintf("Top %d Symbols - Cumulative Returns", topN),
			XAxis:  "Date",
			YAxis:  "Cumulative Return",
			Series: series,
		},
	}
}

// topSymbolsByMax ranks symbols by their largest cumulative return, highest
// first, ties broken by symbol. Symbols without a finite return are skipped.
func topSymbolsByMax(rows []models.CumulativeReturn, n int) []string {
	best := make(map[string]float64)
	for _, r := range rows {
		if !finite(r.CumulativeReturn) {
			continue
		}
		if cur, ok := best[r.Symbol]; !ok || r.CumulativeReturn > cur {
			best[r.Symbol] = r.CumulativeReturn
		}
	}

	syms := make([]string, 0, len(best))
	for s := range best {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool {
		if best[syms[i]] != best[syms[j]] {
			return best[syms[i]] > best[syms[j]]
		}
		return syms[i] < syms[j]
	})
	if len(syms) > n {
		syms = syms[:n]
	}
	return syms
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// distinctMonths returns the sorted distinct year_month values.
func distinctMonths(rows []models.MonthlyMover) []string {
	seen := make(map[string]struct{})
	var months []string
	for _, r := range rows {
		if _, ok := seen[r.YearMonth]; ok {
			continue
		}
		seen[r.YearMonth] = struct{}{}
		months = append(months, r.YearMonth)
	}
	sort.Strings(months)
	return months
}

func buildMonthlyGainersLosers(rows []models.MonthlyMover, month string) (*models.Result, error) {
	months := distinctMonths(rows)
	switch {
	case month == "" && len(months) > 0:
		month = months[0]
	case month != "" && !contains(months, month):
		return nil, fmt.Errorf("%w: %s", ErrUnknownMonth, month)
	}

	t := &models.Table{Columns: []models.Column{textCol("year_month"), textCol("symbol"), numCol("monthly_return_pct"), textCol("type")}}
	var points []models.ChartPoint
	for _, r := range rows {
		if r.YearMonth != month {
			continue
		}
		t.Rows = append(t.Rows, []string{r.YearMonth, r.Symbol, table.Number(r.MonthlyReturnPct, 2), string(r.Type)})
		if finite(r.MonthlyReturnPct) {
			points = append(points, models.ChartPoint{Label: r.Symbol, Value: r.MonthlyReturnPct, Color: moverColor(r.Type)})
		}
	}

	return &models.Result{
		Months: months,
		Month:  month,
		Table:  t,
		Chart: &models.Chart{
			Kind:     models.ChartBar,
			Title:    "Top 5 Gainers & Losers - " + month,
			XAxis:    "symbol",
			YAxis:    "monthly_return_pct",
			ZeroLine: true,
			Series:   []models.ChartSeries{{Name: "monthly_return_pct", Data: points}},
			Legend: []models.LegendItem{
				{Label: string(models.MoverGainer), Color: chart.ColorGain},
				{Label: string(models.MoverLoser), Color: chart.ColorLoss},
			},
		},
	}, nil
}

func moverColor(t models.MoverType) string {
	switch t {
	case models.MoverGainer:
		return chart.ColorGain
	case models.MoverLoser:
		return chart.ColorLoss
	}
	return "#9CA3AF"
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// pivotCorrelations turns sparse pairs into a dense matrix. Rows and columns
// are sorted and missing cells are nil. A duplicated pair keeps the last row
// read rather than failing the whole view.
func pivotCorrelations(rows []models.CorrelationPair) *models.Heatmap {
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	cells := make(map[[2]string]float64, len(rows))
	for _, r := range rows {
		rowSet[r.Symbol] = struct{}{}
		colSet[r.CorrelatedSymbol] = struct{}{}
		cells[[2]string{r.Symbol, r.CorrelatedSymbol}] = r.Correlation
	}

	hm := &models.Heatmap{
		Rows:    sortedKeys(rowSet),
		Columns: sortedKeys(colSet),
		Label:   "Correlation",
	}
	first := true
	hm.Values = make([][]*float64, len(hm.Rows))
	for i, rs := range hm.Rows {
		hm.Values[i] = make([]*float64, len(hm.Columns))
		for j, cs := range hm.Columns {
			v, ok := cells[[2]string{rs, cs}]
			if !ok || !finite(v) {
				continue
			}
			hm.Values[i][j] = &v
			if first || v < hm.Min {
				hm.Min = v
			}
			if first || v > hm.Max {
				hm.Max = v
			}
			first = false
		}
	}
	return hm
}

func buildCorrelationMatrix(rows []models.CorrelationPair) *models.Result {
	hm := pivotCorrelations(rows)

	t := &models.Table{Columns: make([]models.Column, 0, len(hm.Columns)+1)}
	t.Columns = append(t.Columns, textCol("symbol"))
	for _, c := range hm.Columns {
		t.Columns = append(t.Columns, numCol(c))
	}
	for i, rs := range hm.Rows {
		row := make([]string, 0, len(hm.Columns)+1)
		row = append(row, rs)
		for _, v := range hm.Values[i] {
			if v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, table.Number(*v, 4))
		}
		t.Rows = append(t.Rows, row)
	}

	return &models.Result{
		Table: t,
		Chart: &models.Chart{
			Kind:    models.ChartHeatmap,
			Title:   "Stock Correlation Heatmap",
			Heatmap: hm,
		},
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
