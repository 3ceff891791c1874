// Package app assembles the web surface: router, services, and the
// HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"perobatch/internal/config"
	apierrors "perobatch/internal/errors"
	"perobatch/internal/infrastructure"
	custommw "perobatch/internal/middleware"
	"perobatch/internal/services"
	handlers "perobatch/internal/transport/http"
)

// App is the assembled web application.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	router    chi.Router
	server    *http.Server
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	ingestService, err := services.NewIngestService(cfg.Paths.ArchiveDir, logger, providers)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest service: %w", err)
	}
	healthService := services.NewHealthService()
	errorHandler := apierrors.NewErrorHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	r.Use(custommw.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, errorHandler))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	planHandler := handlers.NewPlanHandler(
		ingestService, cfg.Paths.UploadsDir, cfg.Server.MaxUploadBytes, logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(healthService)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/plans", planHandler.Routes())
	})
	r.Get("/healthz", healthHandler.Health)
	r.Get("/version", healthHandler.Version)
	r.Method(http.MethodGet, "/metrics", providers.PrometheusHTTP)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		providers: providers,
		router:    r,
		server:    server,
	}, nil
}

// Router exposes the assembled router, used by tests.
func (a *App) Router() chi.Router {
	return a.router
}

// Run starts the server and blocks until shutdown completes.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		a.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := a.providers.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}
	return nil
}
