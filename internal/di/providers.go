package di

import (
	"database/sql"
	"fmt"

	"StockDash/internal/domain/models"
	"StockDash/internal/domain/repository"
	"StockDash/internal/handler/api"
	"StockDash/internal/handler/web"
	internalrepo "StockDash/internal/repository"
	rendermetrics "StockDash/internal/service/metrics"
	"StockDash/internal/service/ratelimit"
	"StockDash/internal/usecase"
	"StockDash/pkg/cache"
	pkgch "StockDash/pkg/clickhouse"
	"StockDash/pkg/config"
	xhttp "StockDash/pkg/http"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/metrics"
	"StockDash/pkg/server"
	"StockDash/pkg/sqlite"
)

// DBClient is an open connection pool to the statistics database.
type DBClient interface {
	DB() *sql.DB
	Close() error
}

// ProvideDBClient opens the configured backend read-only. The cleanup func
// closes the pool.
func ProvideDBClient(cfg *config.Config, l *applogger.Logger) (DBClient, func(), error) {
	client, err := openDBClient(cfg, l)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("database close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

func openDBClient(cfg *config.Config, l *applogger.Logger) (DBClient, error) {
	switch cfg.Database.Backend {
	case config.BackendClickHouse:
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxOpenConns),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		l.Info("database opened", applogger.String("backend", cfg.Database.Backend), applogger.String("database", client.Database()))
		return client, nil
	default:
		client, err := sqlite.NewClient(
			sqlite.WithPath(cfg.Database.Path),
			sqlite.WithReadOnly(cfg.Database.ReadOnly),
			sqlite.WithBusyTimeout(cfg.Database.BusyTimeout),
			sqlite.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxOpenConns),
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite client: %w", err)
		}
		l.Info("database opened", applogger.String("backend", cfg.Database.Backend), applogger.String("path", client.Path()))
		return client, nil
	}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	rendermetrics.Register()
	return metrics.New()
}

// ProvideStatsStore creates the statistics repository.
func ProvideStatsStore(client DBClient, m repository.Metrics, l *applogger.Logger, cfg *config.Config) repository.StatsStore {
	store := internalrepo.NewSQLStore(client.DB())
	store.SetLogger(l.With(applogger.String("component", "store")))
	store.SetMetrics(m)
	store.SetQueryTimeout(cfg.Database.QueryTimeout)
	return store
}

// ProvideCache builds the result cache. It returns a nil Cache when caching is disabled.
func ProvideCache(cfg *config.Config) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	memOpts := []cache.MemoryOption{
		cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
		cache.WithMemoryCleanup(cfg.Cache.MemoryCleanup),
	}
	if cfg.Cache.Mode == "memory" {
		return cache.NewMemoryCache(memOpts...), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Mode == "layered" {
		return cache.NewLayeredCache(rc, cfg.Cache.TTL, memOpts...), nil
	}
	return rc, nil
}

// ProvideDashboardUseCase creates the view use case.
func ProvideDashboardUseCase(
	store repository.StatsStore,
	c cache.Cache,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.DashboardUseCase {
	opts := []usecase.Option{
		usecase.WithMetrics(m),
		usecase.WithLogger(l.With(applogger.String("component", "dashboard"))),
		usecase.WithTopN(cfg.Dashboard.CumulativeTopN),
	}
	if c != nil {
		opts = append(opts, usecase.WithCache(c, cfg.Cache.TTL))
	}
	return usecase.NewDashboardUseCase(store, opts...)
}

// ProvideChartLimiter creates the per-client chart rate limiter.
func ProvideChartLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.ChartCapacity, cfg.RateLimit.ChartRefillPerSec)
}

// ProvideHandlers collects every route group.
func ProvideHandlers(
	uc *usecase.DashboardUseCase,
	limiter *ratelimit.Limiter,
	l *applogger.Logger,
	cfg *config.Config,
) []xhttp.Handler {
	hl := l.With(applogger.String("component", "http"))
	return []xhttp.Handler{
		web.NewPageHandler(hl, uc, cfg.Dashboard.Title, models.View(cfg.Dashboard.DefaultView)),
		api.NewDashboardHandler(hl, uc),
		api.NewChartHandler(hl, uc, limiter, cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight),
		api.NewHealthHandler(hl, uc),
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(handlers []xhttp.Handler, l *applogger.Logger, cfg *config.Config) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(metricsPath, cfg.Server.SlowRequestThreshold),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	limiter *ratelimit.Limiter,
	c cache.Cache,
) *server.App {
	app := server.New(cfg, l, httpServer, limiter)
	if c != nil {
		app.OnShutdown("cache", c)
	}
	return app
}
