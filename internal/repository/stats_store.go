package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/util"
)

// Table names of the precomputed statistics.
const (
	TableMarketOverview       = "market_overview"
	TableTopVolatility        = "top10_volatility"
	TableSectorReturns        = "sector_returns"
	TableCumulativeReturns    = "cumulative_returns"
	TableMonthlyGainersLosers = "monthly_gainers_losers"
	TableCorrelationMatrix    = "correlation_matrix"
)

// Identifiers are double-quoted so the same text runs on SQLite and ClickHouse.
const (
	qMarketOverview       = `SELECT "metric", "value" FROM market_overview`
	qTopVolatility        = `SELECT "symbol", "Volatility" FROM top10_volatility ORDER BY "Volatility" DESC`
	qSectorReturns        = `SELECT "symbol", "sector", "Average Yearly Return (%)" FROM sector_returns ORDER BY "Average Yearly Return (%)" DESC`
	qCumulativeReturns    = `SELECT "symbol", "date", "cumulative_return" FROM cumulative_returns`
	qMonthlyGainersLosers = `SELECT "year_month", "symbol", "monthly_return_pct", "type" FROM monthly_gainers_losers`
	qCorrelationMatrix    = `SELECT "symbol", "correlated_symbol", "correlation" FROM correlation_matrix`
)

// SQLStore implements StatsStore over any database/sql handle.
type SQLStore struct {
	db      *sql.DB
	l       *applogger.Logger
	m       domrepo.Metrics
	timeout time.Duration
}

var _ domrepo.StatsStore = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *SQLStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// SetMetrics injects a metrics recorder.
func (s *SQLStore) SetMetrics(m domrepo.Metrics) { s.m = m }

// SetQueryTimeout bounds every query. Zero means no bound beyond the caller's context.
func (s *SQLStore) SetQueryTimeout(d time.Duration) { s.timeout = d }

func (s *SQLStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) MarketOverview(ctx context.Context) ([]models.MarketMetric, error) {
	return queryRows(ctx, s, TableMarketOverview, qMarketOverview, func(rows *sql.Rows) (models.MarketMetric, error) {
		var (
			metric sql.NullString
			value  sql.NullFloat64
		)
		if err := rows.Scan(&metric, &value); err != nil {
			return models.MarketMetric{}, err
		}
		return models.MarketMetric{Metric: metric.String, Value: nullFloat(value)}, nil
	})
}

func (s *SQLStore) TopVolatility(ctx context.Context) ([]models.Volatility, error) {
	return queryRows(ctx, s, TableTopVolatility, qTopVolatility, func(rows *sql.Rows) (models.Volatility, error) {
		var (
			symbol sql.NullString
			vol    sql.NullFloat64
		)
		if err := rows.Scan(&symbol, &vol); err != nil {
			return models.Volatility{}, err
		}
		return models.Volatility{Symbol: symbol.String, Volatility: nullFloat(vol)}, nil
	})
}

func (s *SQLStore) SectorReturns(ctx context.Context) ([]models.SectorReturn, error) {
	return queryRows(ctx, s, TableSectorReturns, qSectorReturns, func(rows *sql.Rows) (models.SectorReturn, error) {
		var (
			symbol, sector sql.NullString
			ret            sql.NullFloat64
		)
		if err := rows.Scan(&symbol, &sector, &ret); err != nil {
			return models.SectorReturn{}, err
		}
		return models.SectorReturn{Symbol: symbol.String, Sector: sector.String, AvgYearlyReturn: nullFloat(ret)}, nil
	})
}

func (s *SQLStore) CumulativeReturns(ctx context.Context) ([]models.CumulativeReturn, error) {
	return queryRows(ctx, s, TableCumulativeReturns, qCumulativeReturns, func(rows *sql.Rows) (models.CumulativeReturn, error) {
		var (
			symbol sql.NullString
			date   any
			ret    sql.NullFloat64
		)
		if err := rows.Scan(&symbol, &date, &ret); err != nil {
			return models.CumulativeReturn{}, err
		}
		t, err := toTime(date)
		if err != nil {
			return models.CumulativeReturn{}, err
		}
		return models.CumulativeReturn{Symbol: symbol.String, Date: t, CumulativeReturn: nullFloat(ret)}, nil
	})
}

func (s *SQLStore) MonthlyGainersLosers(ctx context.Context) ([]models.MonthlyMover, error) {
	return queryRows(ctx, s, TableMonthlyGainersLosers, qMonthlyGainersLosers, func(rows *sql.Rows) (models.MonthlyMover, error) {
		var (
			month, symbol, kind sql.NullString
			ret                 sql.NullFloat64
		)
		if err := rows.Scan(&month, &symbol, &ret, &kind); err != nil {
			return models.MonthlyMover{}, err
		}
		return models.MonthlyMover{
			YearMonth:        month.String,
			Symbol:           symbol.String,
			MonthlyReturnPct: nullFloat(ret),
			Type:             models.MoverType(strings.ToLower(strings.TrimSpace(kind.String))),
		}, nil
	})
}

func (s *SQLStore) CorrelationPairs(ctx context.Context) ([]models.CorrelationPair, error) {
	return queryRows(ctx, s, TableCorrelationMatrix, qCorrelationMatrix, func(rows *sql.Rows) (models.CorrelationPair, error) {
		var (
			symbol, other sql.NullString
			corr          sql.NullFloat64
		)
		if err := rows.Scan(&symbol, &other, &corr); err != nil {
			return models.CorrelationPair{}, err
		}
		return models.CorrelationPair{Symbol: symbol.String, CorrelatedSymbol: other.String, Correlation: nullFloat(corr)}, nil
	})
}

// queryRows runs q and scans every row with scan, logging and recording metrics per table.
func queryRows[T any](ctx context.Context, s *SQLStore, table, q string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.fail(table, "query", err)
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]T, 0, 64)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			s.fail(table, "scan", err)
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		s.fail(table, "rows", err)
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}

	elapsed := time.Since(start)
	if s.m != nil {
		s.m.RecordQuery(table, len(out), elapsed.Seconds())
	}
	s.l.Debug("stats query ok",
		applogger.String("table", table),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", elapsed),
	)
	return out, nil
}

func (s *SQLStore) fail(table, stage string, err error) {
	if s.m != nil {
		s.m.RecordError("store_" + stage)
	}
	s.l.Error("stats "+stage+" error",
		applogger.String("table", table),
		applogger.Error(err),
	)
}

func nullFloat(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

// toTime accepts native times and the textual forms dates are exported with.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	case string:
		return parseStoredTime(t)
	case []byte:
		return parseStoredTime(string(t))
	case int64:
		return time.Unix(t, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func parseStoredTime(s string) (time.Time, error) {
	if t, ok := util.ParseTime(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
