package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "AnalystDesk/internal/domain/repository"
	"AnalystDesk/pkg/config"
	xhttp "AnalystDesk/pkg/http"
	applogger "AnalystDesk/pkg/logger"
	pkgqueue "AnalystDesk/pkg/queue"
)

// App encapsulates the application lifecycle: the HTTP API, the optional
// async job queue, and the optional decision event publisher.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	queue      *pkgqueue.RedisQueue
	publisher  domrepo.DecisionPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	queue *pkgqueue.RedisQueue,
	publisher domrepo.DecisionPublisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		queue:     queue,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.logger.Error("queue start failed", applogger.Error(err))
			return err
		}
		a.logger.Info("analysis job queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("analyst desk listening", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.logger.Warn("queue stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
