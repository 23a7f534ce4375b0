package di

import (
	"fmt"

	drepo "ChartFeed/internal/domain/repository"
	"ChartFeed/internal/handler/api"
	"ChartFeed/internal/handler/ws"
	"ChartFeed/internal/service/cache"
	"ChartFeed/internal/service/ratelimit"
	"ChartFeed/internal/service/stockscan"
	"ChartFeed/internal/usecase"
	"ChartFeed/pkg/config"
	xlogger "ChartFeed/pkg/logger"
	appmetrics "ChartFeed/pkg/metrics"
	"ChartFeed/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return appmetrics.New()
}

// ProvideResponseCache picks the cache backend for raw quote responses.
func ProvideResponseCache(cfg *config.Config) cache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideCandleSource creates the stockscan candle source.
func ProvideCandleSource(cfg *config.Config, logger *xlogger.Logger, c cache.BytesCache) drepo.CandleSource {
	opts := []stockscan.Option{}
	if cfg.Cache.TTL > 0 {
		opts = append(opts, stockscan.WithCache(c, cfg.Cache.TTL))
	}
	return stockscan.New(
		cfg.Chart.BaseURL,
		cfg.Chart.Exchange,
		cfg.Chart.RequestTimeout,
		logger,
		opts...,
	)
}

// ProvideChartController creates the timeframe controller.
func ProvideChartController(cfg *config.Config, source drepo.CandleSource, m drepo.Metrics, logger *xlogger.Logger) *usecase.ChartController {
	return usecase.NewChartController(
		source,
		m,
		logger,
		cfg.Chart.Instrument,
		usecase.WithWindowSize(cfg.Chart.WindowSize),
		usecase.WithDefaultGranularity(drepo.NormalizeGranularity(cfg.Chart.DefaultGranularity)),
	)
}

// ProvideHub creates the websocket push hub and subscribes it to the
// controller.
func ProvideHub(logger *xlogger.Logger, ctrl *usecase.ChartController) *ws.Hub {
	return ws.NewHub(logger, ctrl)
}

// ProvideRateLimiter creates the per-client limiter for timeframe changes.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideChartHandler creates the Echo HTTP handler.
func ProvideChartHandler(logger *xlogger.Logger, ctrl *usecase.ChartController, hub *ws.Hub, limiter *ratelimit.Limiter) *api.ChartHandler {
	return api.NewChartHandler(logger, ctrl, hub, limiter)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	ctrl *usecase.ChartController,
	hub *ws.Hub,
	handler *api.ChartHandler,
	respCache cache.BytesCache,
) *server.App {
	return server.New(cfg, logger, ctrl, hub, handler, respCache)
}
