package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delicioso/internal/config"
	"delicioso/internal/database"
	"delicioso/internal/events"
	"delicioso/internal/handler"
	"delicioso/internal/repository"
	"delicioso/internal/router"
	"delicioso/internal/service"
	"delicioso/internal/telemetry"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting delicioso API server")

	// Money is rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("tracing unavailable, continuing without it")
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	publisher := newPublisher(cfg.Events, logger)
	defer publisher.Close()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)
	stockRepo := repository.NewStockRepository(pool, logger)
	adminRepo := repository.NewAdminRepository(pool, logger)

	// Initialize services
	stockService := service.NewStockService(stockRepo, cfg.Ledger.LowStockThreshold, logger)
	orderService := service.NewOrderService(orderRepo, stockService, publisher, cfg.Ledger, logger)
	dashboardService := service.NewDashboardService(orderRepo, cfg.Ledger, logger)
	adminService := service.NewAdminService(adminRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Orders:    handler.NewOrderHandler(orderService, logger),
		Stock:     handler.NewStockHandler(stockService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
		Admin:     handler.NewAdminHandler(adminService, logger),
	}, cfg.CORS, cfg.Admin.APIKey, logger)

	if cfg.Admin.APIKey == "" {
		logger.Warn().Msg("ADMIN_API_KEY not set, reset endpoint is unprotected")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// In-flight submissions finish and commit before the pool closes.
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPublisher connects to RabbitMQ when configured, falling back to a no-op
// publisher so order intake never depends on the broker.
func newPublisher(cfg config.EventsConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled() {
		logger.Info().Msg("order events disabled (RABBITMQ_URL not set)")
		return events.NewNopPublisher()
	}

	publisher, err := events.NewAMQPPublisher(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise RabbitMQ publisher, order events disabled")
		return events.NewNopPublisher()
	}
	return publisher
}
