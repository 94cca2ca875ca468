package models

import (
	"errors"
	"fmt"
)

// ErrUnknownView is returned when a slug does not name one of the dashboard views.
var ErrUnknownView = errors.New("unknown view")

// View identifies one of the fixed display modes of the dashboard.
type View string

const (
	ViewMarketOverview       View = "market-overview"
	ViewVolatility           View = "volatility"
	ViewSectorPerformance    View = "sector-performance"
	ViewCumulativeReturns    View = "cumulative-returns"
	ViewMonthlyGainersLosers View = "monthly-gainers-losers"
	ViewCorrelationMatrix    View = "correlation-matrix"
)

// ViewInfo describes a view as listed in the sidebar.
type ViewInfo struct {
	View     View   `json:"slug"`
	Label    string `json:"label"`
	Header   string `json:"header"`
	Table    string `json:"table"`
	HasChart bool   `json:"has_chart"`
}

// menu order is the sidebar order; the first entry is the landing view.
var menu = []ViewInfo{
	{ViewMarketOverview, "Market Overview", "📈 Market Overview", "market_overview", false},
	{ViewVolatility, "Volatility Analysis", "📉 Top 10 Most Volatile Stocks", "top10_volatility", true},
	{ViewSectorPerformance, "Sector-wise Performance", "🏭 Sector-wise Average Return", "sector_returns", true},
	{ViewCumulativeReturns, "Cumulative Returns", "📈 Cumulative Returns Over Time", "cumulative_returns", true},
	{ViewMonthlyGainersLosers, "Monthly Gainers & Losers", "📆 Monthly Top 5 Gainers & Losers", "monthly_gainers_losers", true},
	{ViewCorrelationMatrix, "Correlation Matrix", "🔗 Stock Correlation Matrix", "correlation_matrix", true},
}

// Views returns the menu in display order.
func Views() []ViewInfo {
	out := make([]ViewInfo, len(menu))
	copy(out, menu)
	return out
}

// ParseView resolves a slug to a View.
func ParseView(s string) (View, error) {
	for _, v := range menu {
		if string(v.View) == s {
			return v.View, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Info returns the menu entry of v. Unknown views yield a zero ViewInfo.
func (v View) Info() ViewInfo {
	for _, vi := range menu {
		if vi.View == v {
			return vi
		}
	}
	return ViewInfo{}
}
