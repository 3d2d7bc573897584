// Package app wires the application together: configuration, logging,
// observability, the pipeline components, and the HTTP server. cmd/web stays
// a thin shell around this package.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"faopulse/internal/calendar"
	"faopulse/internal/config"
	"faopulse/internal/dataprocessing"
	apperrors "faopulse/internal/errors"
	"faopulse/internal/fetch"
	"faopulse/internal/infrastructure"
	"faopulse/internal/middleware"
	"faopulse/internal/optionchain"
	"faopulse/internal/services"
	transporthttp "faopulse/internal/transport/http"
)

// Application holds the wired components and the HTTP server.
type Application struct {
	Config *config.Config
	Logger *slog.Logger

	otel   *infrastructure.OTelProviders
	store  optionchain.Store
	router chi.Router
	server *http.Server

	positioningHandler *transporthttp.PositioningHandler
	optionChainHandler *transporthttp.OptionChainHandler
	healthHandler      *transporthttp.HealthHandler
}

// NewApplication builds the full application from configuration. Every
// dependency is constructed here and injected downward; nothing reaches for
// globals except the process-wide logger and OTel providers.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	otelProviders, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	holidays, err := cfg.LoadHolidays()
	if err != nil {
		return nil, fmt.Errorf("failed to load holiday table: %w", err)
	}
	cal := calendar.New(holidays)

	fetcher := fetch.New(cfg.Source, cfg.GetDataDir(), logger)
	window := dataprocessing.NewWindow(fetcher, cal, logger)

	positioningService := services.NewPositioningService(window, cal, logger)
	healthService := services.NewHealthService(cfg.GetDataDir(), logger)

	store := optionchain.NewStore(cfg.Redis, logger)
	chainClient, err := optionchain.NewClient(cfg.Source, store, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create option chain client: %w", err)
	}

	errorHandler := apperrors.NewErrorHandler(logger, false)

	app := &Application{
		Config: cfg,
		Logger: logger,
		otel:   otelProviders,
		store:  store,

		positioningHandler: transporthttp.NewPositioningHandler(positioningService, logger, errorHandler),
		optionChainHandler: transporthttp.NewOptionChainHandler(chainClient, logger, errorHandler),
		healthHandler:      transporthttp.NewHealthHandler(healthService, logger),
	}

	app.setupRouter(errorHandler)
	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter assembles the middleware chain and the route tree.
func (a *Application) setupRouter(errorHandler *apperrors.ErrorHandler) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(middleware.Recoverer(a.Logger))
	r.Use(middleware.SecurityHeaders)

	if a.Config.Server.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(
			a.Config.Server.RateLimitRPS,
			a.Config.Server.RateLimitBurst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/health", a.healthHandler.Routes())
		r.Mount("/option-chain", a.optionChainHandler.Routes())
		r.Mount("/", a.positioningHandler.Routes())
	})

	if a.otel.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.otel.PrometheusHTTP)
	}

	a.router = r
}

// Router exposes the assembled route tree, mainly for tests.
func (a *Application) Router() chi.Router {
	return a.router
}

// Run starts the HTTP server and blocks until the context is cancelled or a
// termination signal arrives, then shuts down gracefully within the
// configured timeout.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			slog.String("addr", a.server.Addr),
			slog.String("version", config.AppVersion))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.shutdown(context.Background())
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.shutdown(shutdownCtx)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.shutdown(shutdownCtx)
	a.Logger.Info("shutdown complete")
	return nil
}

// shutdown releases non-server resources.
func (a *Application) shutdown(ctx context.Context) {
	if err := a.store.Close(); err != nil {
		a.Logger.Warn("failed to close option chain store", slog.String("error", err.Error()))
	}

	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.otel.Shutdown(flushCtx); err != nil {
		a.Logger.Warn("failed to shut down observability", slog.String("error", err.Error()))
	}

	infrastructure.CloseLogFile()
}
