package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ChartFeed/internal/handler/api"
	"ChartFeed/internal/handler/ws"
	"ChartFeed/internal/service/cache"
	"ChartFeed/internal/usecase"
	"ChartFeed/pkg/config"
	xhttp "ChartFeed/pkg/http"
	applogger "ChartFeed/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	ctrl      *usecase.ChartController
	hub       *ws.Hub
	handler   *api.ChartHandler
	respCache cache.BytesCache

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	ctrl *usecase.ChartController,
	hub *ws.Hub,
	handler *api.ChartHandler,
	respCache cache.BytesCache,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		ctrl:      ctrl,
		hub:       hub,
		handler:   handler,
		respCache: respCache,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	// websocket hub first so the controller's initial transitions reach it
	go a.hub.Run(ctx)

	// begins Loading(default granularity) and the first fetch
	a.ctrl.Start(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	a.logger.Info("chartfeed started",
		applogger.String("instrument", a.cfg.Chart.Instrument),
		applogger.String("granularity", a.cfg.Chart.DefaultGranularity),
		applogger.Int("port", a.cfg.Server.Port),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(cancel)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(cancel context.CancelFunc) error {
	// stops the controller run loop and the hub
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer stop()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if closer, ok := a.respCache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
