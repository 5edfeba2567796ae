// Package app initializes and holds long-lived application services, acting
// as the dependency injection point for the research service.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/devscout/research-agent/internal/api"
	"github.com/devscout/research-agent/internal/clock/system"
	"github.com/devscout/research-agent/internal/config"
	"github.com/devscout/research-agent/internal/controller"
	"github.com/devscout/research-agent/internal/event"
	"github.com/devscout/research-agent/internal/event/sinks"
	"github.com/devscout/research-agent/internal/gateway"
	"github.com/devscout/research-agent/internal/id/uuid"
	"github.com/devscout/research-agent/internal/logging"
	"github.com/devscout/research-agent/internal/metrics"
	"github.com/devscout/research-agent/internal/notify"
	"github.com/devscout/research-agent/internal/progress"
)

// App holds the shared, long-lived services: logger, event hub, lifecycle
// controller, and HTTP server. It is built once at startup and torn down
// via Close.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	hub     *event.Hub
	notices *notify.Recorder
	ctrl    *controller.Controller
	server  *api.Server
}

// New wires every service from configuration, failing fast when any piece
// cannot be constructed.
func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	clk := system.New()
	gw, err := gateway.New(gateway.Config{
		Endpoint:  cfg.Backend.Endpoint,
		Timeout:   cfg.BackendTimeout(),
		UserAgent: cfg.Backend.UserAgent,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init gateway: %w", err)
	}
	sim, err := progress.New(progress.Default(), cfg.TickInterval(), clk)
	if err != nil {
		return nil, fmt.Errorf("init simulator: %w", err)
	}

	notices := notify.New(notify.Config{
		DedupWindow: cfg.DedupWindow(),
		Capacity:    cfg.Notify.Capacity,
		Clock:       clk,
		OnDeduped:   metrics.ObserveNotificationDeduped,
	})
	hub := event.NewHub(
		event.Config{Logger: logger},
		sinks.NewLog(logger),
		metrics.NewSink(),
		notices,
	)

	ctrl := controller.New(gw, sim, hub, clk, uuid.New(), logger)
	server := api.NewServer(ctrl, notices, cfg, logger)

	logger.Info("application services initialized",
		zap.String("backend", cfg.Backend.Endpoint),
		zap.Int("port", cfg.Server.Port),
	)
	return &App{
		cfg:     cfg,
		logger:  logger,
		hub:     hub,
		notices: notices,
		ctrl:    ctrl,
		server:  server,
	}, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Controller returns the search lifecycle controller.
func (a *App) Controller() *controller.Controller {
	return a.ctrl
}

// Handler returns the HTTP handler for the service.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Close drains the event hub and flushes the logger.
func (a *App) Close(ctx context.Context) error {
	if err := a.hub.Close(ctx); err != nil {
		return fmt.Errorf("close event hub: %w", err)
	}
	_ = a.logger.Sync()
	return nil
}
