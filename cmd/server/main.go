package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/DevishMittal/eljay-console/internal/config"
	"github.com/DevishMittal/eljay-console/internal/handler"
	"github.com/DevishMittal/eljay-console/internal/model"
	"github.com/DevishMittal/eljay-console/internal/notification"
	"github.com/DevishMittal/eljay-console/internal/repository"
	"github.com/DevishMittal/eljay-console/internal/signals"
	"github.com/DevishMittal/eljay-console/internal/telemetry"
)

func main() {
	// Create a basic logger for startup (before OTel is initialized)
	startupLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		startupLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	startupLogger.Info("starting application",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	ctx := context.Background()

	// Initialize OpenTelemetry tracer provider
	tp, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		startupLogger.Error("failed to initialize tracer provider", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			startupLogger.Error("failed to shutdown tracer provider", slog.Any("error", err))
		}
	}()

	// Initialize OpenTelemetry meter provider
	mp, err := telemetry.InitMeterProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		startupLogger.Error("failed to initialize meter provider", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mp.Shutdown(ctx); err != nil {
			startupLogger.Error("failed to shutdown meter provider", slog.Any("error", err))
		}
	}()

	// Initialize OpenTelemetry logger provider (after other providers for log-trace correlation)
	lp, logger, err := telemetry.InitLoggerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		startupLogger.Error("failed to initialize logger provider", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := lp.Shutdown(ctx); err != nil {
			startupLogger.Error("failed to shutdown logger provider", slog.Any("error", err))
		}
	}()

	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	// Task store and notification feed
	store := repository.NewTaskStore(clock, nil)
	feed := notification.NewFeed()

	// Create metrics instruments
	meter := otel.Meter(cfg.ServiceName)
	metrics, err := telemetry.NewMetrics(meter, store.Count, feed.UnreadCount)
	if err != nil {
		logger.Error("failed to create metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// Notification pipeline
	sources, err := buildSources(cfg, store, clock, logger)
	if err != nil {
		logger.Error("failed to configure signal sources", slog.Any("error", err))
		os.Exit(1)
	}
	aggregator, err := notification.NewAggregator(sources, cfg.SignalTimeout, logger, metrics)
	if err != nil {
		logger.Error("failed to create aggregator", slog.Any("error", err))
		os.Exit(1)
	}
	poller := notification.NewPoller(aggregator, feed, cfg.PollInterval, logger)

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		if err := poller.Run(ctx); err != nil {
			logger.Error("poller error", slog.Any("error", err))
		}
	}()

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(store, logger, metrics, clock, loc)
	notificationHandler := handler.NewNotificationHandler(feed, poller, logger, metrics)

	// Create router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint (excluded from tracing)
	r.Get("/health", handler.Health)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/tasks", taskHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// Wrap router with OpenTelemetry HTTP instrumentation
	otelHandler := otelhttp.NewHandler(r, "http-server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			// Skip tracing for health checks
			return r.URL.Path != "/health"
		}),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      otelHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Stop polling first so no cycle merges into the feed mid-shutdown
	poller.Stop()
	<-pollerDone

	// Create context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Gracefully shutdown the server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("server stopped")
}

// buildSources wires one collaborator per notification type. A type with
// a REST path polls the clinic API; pending tasks fall back to the local
// task store; anything else without a path is disabled.
func buildSources(cfg *config.Config, store signals.PendingCounter, clock func() time.Time, logger *slog.Logger) ([]notification.Source, error) {
	client := signals.NewHTTPClient(cfg.SignalTimeout)

	sources := make([]notification.Source, 0, len(model.NotificationTypes))
	for _, t := range model.NotificationTypes {
		path := cfg.SignalPaths[t]
		switch {
		case path != "" && cfg.ClinicAPIBaseURL != "":
			counter, err := signals.NewHTTPCounter(client, cfg.ClinicAPIBaseURL, path, cfg.ClinicAPIToken)
			if err != nil {
				return nil, err
			}
			logger.Info("signal source configured",
				slog.String("signal", string(t)),
				slog.String("url", counter.URL()),
			)
			sources = append(sources, notification.Source{Type: t, Collaborator: counter})
		case t == model.NotificationPendingTasks:
			logger.Info("signal source configured",
				slog.String("signal", string(t)),
				slog.String("backend", "task_store"),
			)
			sources = append(sources, notification.Source{Type: t, Collaborator: signals.NewTaskCounter(store, clock)})
		default:
			logger.Warn("signal source disabled", slog.String("signal", string(t)))
		}
	}
	return sources, nil
}
