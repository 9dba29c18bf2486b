package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/calc"
	"github.com/boddenberg/givecalc-bfa-go/internal/config"
	"github.com/boddenberg/givecalc-bfa-go/internal/handler"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/engine"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/givecalc-bfa-go/internal/service"
	"github.com/boddenberg/givecalc-bfa-go/internal/session"

	"github.com/sony/gobreaker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend-for-frontend",
	RunE:  runServe,
}

func loadConfig() (*config.Config, error) {
	if flagConfigDir != "" {
		return config.Load(flagConfigDir)
	}
	return config.Load()
}

func newEngineClient(cfg *config.Config, logger *zap.Logger) *engine.Client {
	cb := resilience.NewCircuitBreaker(resilience.BreakerSettings{
		Name:         "engine",
		IsSuccessful: engine.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return engine.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.EngineAPIURL,
		cb,
		resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
			MaxConcurrency: cfg.EngineMaxConcurrency,
		},
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// --- Config ---
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("engine_api_url", cfg.EngineAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("max_backoff", cfg.MaxBackoff),
		zap.Int("engine_max_concurrency", cfg.EngineMaxConcurrency),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)
	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("SESSION_SECRET not set, using the development secret")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "givecalc-bfa")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Engine ---
	engineClient := newEngineClient(cfg, logger)
	dispatcher := calc.NewDispatcher(engineClient, metrics, logger)

	// --- Sessions ---
	store := session.NewStore(cfg.SessionTTL, metrics, logger)
	tokens := session.NewTokens(cfg.SessionSecret, cfg.SessionTTL)

	// --- Services ---
	calculatorSvc := service.NewCalculatorService(store, tokens, dispatcher, metrics, logger)
	healthSvc := service.NewHealthService(engineClient, 3*time.Second)

	// --- Router ---
	router := handler.NewRouter(calculatorSvc, healthSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return store.Run(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
