package repository

import (
	"context"
	"time"

	"StockDash/internal/domain/models"
)

// StatsStore reads the precomputed statistics tables. One method, one query.
type StatsStore interface {
	MarketOverview(ctx context.Context) ([]models.MarketMetric, error)
	TopVolatility(ctx context.Context) ([]models.Volatility, error)
	SectorReturns(ctx context.Context) ([]models.SectorReturn, error)
	CumulativeReturns(ctx context.Context) ([]models.CumulativeReturn, error)
	MonthlyGainersLosers(ctx context.Context) ([]models.MonthlyMover, error)
	CorrelationPairs(ctx context.Context) ([]models.CorrelationPair, error)
	Health(ctx context.Context) error
}

type Metrics interface {
	RecordQuery(table string, rows int, seconds float64)
	RecordError(kind string)
	RecordCache(result string)
}

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
