package models

import "time"

// Rows of the precomputed statistics tables. Numeric columns read as NULL
// are carried as NaN.

// MarketMetric is one metric/value pair of market_overview.
type MarketMetric struct {
	Metric string
	Value  float64
}

// Well-known market_overview metric names.
const (
	MetricTotalStocks  = "Total Stocks"
	MetricAveragePrice = "Average Price"
	MetricGreenStocks  = "Green Stocks"
	MetricRedStocks    = "Red Stocks"
)

// Volatility is a row of top10_volatility.
type Volatility struct {
	Symbol     string
	Volatility float64
}

// SectorReturn is a row of sector_returns.
type SectorReturn struct {
	Symbol          string
	Sector          string
	AvgYearlyReturn float64
}

// CumulativeReturn is a point of the cumulative_returns time series.
type CumulativeReturn struct {
	Symbol           string
	Date             time.Time
	CumulativeReturn float64
}

// MoverType tells gainers from losers in monthly_gainers_losers.
type MoverType string

const (
	MoverGainer MoverType = "gainer"
	MoverLoser  MoverType = "loser"
)

// MonthlyMover is a row of monthly_gainers_losers.
type MonthlyMover struct {
	YearMonth        string
	Symbol           string
	MonthlyReturnPct float64
	Type             MoverType
}

// CorrelationPair is a row of the sparse correlation_matrix table.
type CorrelationPair struct {
	Symbol           string
	CorrelatedSymbol string
	Correlation      float64
}
