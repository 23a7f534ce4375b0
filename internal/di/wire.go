//go:build wireinject
// +build wireinject

package di

import (
	"ChartFeed/pkg/config"
	"ChartFeed/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideResponseCache,
		ProvideCandleSource,

		// Core pipeline
		ProvideChartController,

		// Delivery
		ProvideHub,
		ProvideRateLimiter,
		ProvideChartHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
