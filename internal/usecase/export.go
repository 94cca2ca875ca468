package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"StockDash/internal/domain/models"

	"github.com/gocarina/gocsv"
)

// CSV records carry the source column names. Numbers are written at full
// precision and NULLs as empty fields.

type marketOverviewRecord struct {
	Metric string `csv:"metric"`
	Value  string `csv:"value"`
}

type volatilityRecord struct {
	Symbol     string `csv:"symbol"`
	Volatility string `csv:"Volatility"`
}

type sectorReturnRecord struct {
	Symbol          string `csv:"symbol"`
	Sector          string `csv:"sector"`
	AvgYearlyReturn string `csv:"Average Yearly Return (%)"`
}

type cumulativeReturnRecord struct {
	Symbol           string `csv:"symbol"`
	Date             string `csv:"date"`
	CumulativeReturn string `csv:"cumulative_return"`
}

type monthlyMoverRecord struct {
	YearMonth        string `csv:"year_month"`
	Symbol           string `csv:"symbol"`
	MonthlyReturnPct string `csv:"monthly_return_pct"`
	Type             string `csv:"type"`
}

type correlationRecord struct {
	Symbol           string `csv:"symbol"`
	CorrelatedSymbol string `csv:"correlated_symbol"`
	Correlation      string `csv:"correlation"`
}

func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportCSV returns the rows behind view as CSV. The monthly view exports the
// selected month only, like its table.
func (uc *DashboardUseCase) ExportCSV(ctx context.Context, view models.View, req models.ViewRequest) ([]byte, error) {
	if _, err := models.ParseView(string(view)); err != nil {
		return nil, err
	}

	records, err := uc.exportRecords(ctx, view, req)
	if err != nil {
		return nil, err
	}
	out, err := gocsv.MarshalString(records)
	if err != nil {
		uc.recordError("csv_marshal")
		return nil, fmt.Errorf("marshal %s csv: %w", view, err)
	}
	return []byte(out), nil
}

func (uc *DashboardUseCase) exportRecords(ctx context.Context, view models.View, req models.ViewRequest) (interface{}, error) {
	switch view {
	case models.ViewMarketOverview:
		rows, err := uc.store.MarketOverview(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		out := make([]marketOverviewRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, marketOverviewRecord{Metric: r.Metric, Value: csvFloat(r.Value)})
		}
		return out, nil
	case models.ViewVolatility:
		rows, err := uc.store.TopVolatility(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		out := make([]volatilityRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, volatilityRecord{Symbol: r.Symbol, Volatility: csvFloat(r.Volatility)})
		}
		return out, nil
	case models.ViewSectorPerformance:
		rows, err := uc.store.SectorReturns(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		out := make([]sectorReturnRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, sectorReturnRecord{Symbol: r.Symbol, Sector: r.Sector, AvgYearlyReturn: csvFloat(r.AvgYearlyReturn)})
		}
		return out, nil
	case models.ViewCumulativeReturns:
		rows, err := uc.store.CumulativeReturns(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		out := make([]cumulativeReturnRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, cumulativeReturnRecord{Symbol: r.Symbol, Date: formatDate(r.Date), CumulativeReturn: csvFloat(r.CumulativeReturn)})
		}
		return out, nil
	case models.ViewMonthlyGainersLosers:
		rows, err := uc.store.MonthlyGainersLosers(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		months := distinctMonths(rows)
		month := req.Month
		switch {
		case month == "" && len(months) > 0:
			month = months[0]
		case month != "" && !contains(months, month):
			return nil, fmt.Errorf("%w: %s", ErrUnknownMonth, month)
		}
		out := make([]monthlyMoverRecord, 0, len(rows))
		for _, r := range rows {
			if r.YearMonth != month {
				continue
			}
			out = append(out, monthlyMoverRecord{YearMonth: r.YearMonth, Symbol: r.Symbol, MonthlyReturnPct: csvFloat(r.MonthlyReturnPct), Type: string(r.Type)})
		}
		return out, nil
	case models.ViewCorrelationMatrix:
		rows, err := uc.store.CorrelationPairs(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		out := make([]correlationRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, correlationRecord{Symbol: r.Symbol, CorrelatedSymbol: r.CorrelatedSymbol, Correlation: csvFloat(r.Correlation)})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownView, view)
}
