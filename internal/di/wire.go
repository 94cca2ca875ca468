//go:build wireinject
// +build wireinject

package di

import (
	"StockDash/pkg/config"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, l *applogger.Logger) (*server.App, func(), error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideDBClient,
		ProvideCache,

		// Repositories
		ProvideStatsStore,

		// Use cases
		ProvideDashboardUseCase,

		// HTTP
		ProvideChartLimiter,
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
