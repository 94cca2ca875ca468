package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	"StockDash/internal/render/chart"
	"StockDash/pkg/cache"
	applogger "StockDash/pkg/logger"
)

var (
	// ErrUnknownMonth is returned when the requested month has no rows.
	ErrUnknownMonth = errors.New("unknown month")
	// ErrNoChart is returned when a chart is requested for a table-only view.
	ErrNoChart = errors.New("view has no chart")
)

// DefaultTopN is the number of symbols drawn on the cumulative returns chart.
const DefaultTopN = 5

// DashboardUseCase turns the statistics tables into view results.
type DashboardUseCase struct {
	store    domrepo.StatsStore
	cache    domrepo.BytesCache
	cacheTTL time.Duration
	metrics  domrepo.Metrics
	l        *applogger.Logger
	topN     int
	now      func() time.Time
}

// Option configures a DashboardUseCase.
type Option func(*DashboardUseCase)

// WithCache caches rendered results and charts for ttl.
func WithCache(c domrepo.BytesCache, ttl time.Duration) Option {
	return func(uc *DashboardUseCase) {
		uc.cache = c
		uc.cacheTTL = ttl
	}
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(uc *DashboardUseCase) { uc.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(uc *DashboardUseCase) {
		if l != nil {
			uc.l = l
		}
	}
}

// WithTopN sets the default number of cumulative return lines.
func WithTopN(n int) Option {
	return func(uc *DashboardUseCase) {
		if n > 0 {
			uc.topN = n
		}
	}
}

func NewDashboardUseCase(store domrepo.StatsStore, opts ...Option) *DashboardUseCase {
	uc := &DashboardUseCase{
		store: store,
		l:     applogger.Nop(),
		topN:  DefaultTopN,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Views lists the menu in display order.
func (uc *DashboardUseCase) Views() []models.ViewInfo {
	return models.Views()
}

// Health checks the backing store.
func (uc *DashboardUseCase) Health(ctx context.Context) error {
	return uc.store.Health(ctx)
}

// Render runs the single query behind view and shapes it for display.
func (uc *DashboardUseCase) Render(ctx context.Context, view models.View, req models.ViewRequest) (*models.Result, error) {
	if _, err := models.ParseView(string(view)); err != nil {
		return nil, err
	}
	req = uc.normalize(view, req)

	key := cache.GenerateKeyWithParams("view", view, req.Month, req.Top)
	if b, ok := uc.cacheGet(ctx, key); ok {
		var res models.Result
		if err := json.Unmarshal(b, &res); err == nil {
			return &res, nil
		}
	}

	res, err := uc.build(ctx, view, req)
	if err != nil {
		return nil, err
	}
	res.View = view.Info()
	res.GeneratedAt = uc.now().UTC()

	if uc.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			uc.cacheSet(ctx, key, b)
		}
	}
	return res, nil
}

// RenderChart renders the chart of view as an image.
func (uc *DashboardUseCase) RenderChart(ctx context.Context, view models.View, req models.ChartRequest, format chart.Format) ([]byte, error) {
	if _, err := models.ParseView(string(view)); err != nil {
		return nil, err
	}
	if !view.Info().HasChart {
		return nil, fmt.Errorf("%w: %s", ErrNoChart, view)
	}
	req.ViewRequest = uc.normalize(view, req.ViewRequest)

	key := cache.GenerateKeyWithParams("chart", view, req.Month, req.Top, format, req.Width, req.Height)
	if b, ok := uc.cacheGet(ctx, key); ok {
		return b, nil
	}

	res, err := uc.Render(ctx, view, req.ViewRequest)
	if err != nil {
		return nil, err
	}
	if res.Chart == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoChart, view)
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, res.Chart, chart.Options{Format: format, Width: req.Width, Height: req.Height}); err != nil {
		uc.recordError("chart_render")
		return nil, err
	}

	uc.cacheSet(ctx, key, buf.Bytes())
	return buf.Bytes(), nil
}

// normalize fills per-view defaults so equal requests share cache keys.
func (uc *DashboardUseCase) normalize(view models.View, req models.ViewRequest) models.ViewRequest {
	if view != models.ViewCumulativeReturns {
		req.Top = 0
	} else if req.Top <= 0 {
		req.Top = uc.topN
	}
	if view != models.ViewMonthlyGainersLosers {
		req.Month = ""
	}
	return req
}

func (uc *DashboardUseCase) build(ctx context.Context, view models.View, req models.ViewRequest) (*models.Result, error) {
	switch view {
	case models.ViewMarketOverview:
		rows, err := uc.store.MarketOverview(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		return buildMarketOverview(rows), nil
	case models.ViewVolatility:
		rows, err := uc.store.TopVolatility(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		return buildVolatility(rows), nil
	case models.ViewSectorPerformance:
		rows, err := uc.store.SectorReturns(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		return buildSectorPerformance(rows), nil
	case models.ViewCumulativeReturns:
		rows, err := uc.store.CumulativeReturns(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		return buildCumulativeReturns(rows, req.Top), nil
	case models.ViewMonthlyGainersLosers:
		rows, err := uc.store.MonthlyGainersLosers(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		return buildMonthlyGainersLosers(rows, req.Month)
	case models.ViewCorrelationMatrix:
		rows, err := uc.store.CorrelationPairs(ctx)
		if err != nil {
			return nil, uc.storeErr(view, err)
		}
		return buildCorrelationMatrix(rows), nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownView, view)
}

func (uc *DashboardUseCase) storeErr(view models.View, err error) error {
	uc.recordError("view_query")
	uc.l.Error("view query failed",
		applogger.String("view", string(view)),
		applogger.Error(err),
	)
	return fmt.Errorf("render %s: %w", view, err)
}

func (uc *DashboardUseCase) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if uc.cache == nil {
		return nil, false
	}
	b, ok, err := uc.cache.GetBytes(ctx, key)
	switch {
	case err != nil:
		uc.recordCache("error")
		uc.l.Warn("cache get failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	case !ok:
		uc.recordCache("miss")
		return nil, false
	}
	uc.recordCache("hit")
	return b, true
}

func (uc *DashboardUseCase) cacheSet(ctx context.Context, key string, b []byte) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetBytes(ctx, key, b, uc.cacheTTL); err != nil {
		uc.l.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (uc *DashboardUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}

func (uc *DashboardUseCase) recordCache(result string) {
	if uc.metrics != nil {
		uc.metrics.RecordCache(result)
	}
}
