package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gamstore/storefront/config"
	httpDelivery "github.com/gamstore/storefront/internal/delivery/http"
	"github.com/gamstore/storefront/internal/domain"
	"github.com/gamstore/storefront/internal/infrastructure/cache"
	"github.com/gamstore/storefront/internal/infrastructure/gateway"
	"github.com/gamstore/storefront/internal/infrastructure/kvstore"
	"github.com/gamstore/storefront/internal/infrastructure/logging"
	"github.com/gamstore/storefront/internal/infrastructure/metrics"
	"github.com/gamstore/storefront/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Pretty, os.Stdout)

	logger.Info().
		Str("version", httpDelivery.Version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("store", cfg.Store.Type).
		Msg("starting storefront")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	kv, err := kvstore.New(kvstore.Config{
		Type:       cfg.Store.Type,
		SQLitePath: cfg.Store.SQLitePath,
		RedisURL:   cfg.Store.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Type, err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	client := gateway.NewClient(gateway.Config{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		RateLimit:  cfg.Backend.RateLimit,
		Burst:      cfg.Backend.Burst,
		MaxRetries: cfg.Backend.MaxRetries,
	}, logger)
	logger.Info().Str("base_url", cfg.Backend.BaseURL).Msg("backend configured")

	cacheMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Initialize usecase layer
	home := usecase.NewHomeDataCache(
		cache.NewMemoryCache(),
		client,
		kv,
		usecase.HomeDataCacheConfig{
			TTL:          cfg.Cache.HomeTTL,
			SectionLimit: cfg.Cache.SectionLimit,
		},
		usecase.WithLogger(logger),
		usecase.WithMetrics(cacheMetrics),
	)
	search := usecase.NewCatalogSearch(client, logger)
	profile := usecase.NewUserProfileCache(kv, client, usecase.UserProfileCacheConfig{TTL: cfg.Cache.ProfileTTL}, logger)
	cart := usecase.NewCartService(
		kv,
		httpDelivery.RequestConfirmer,
		domain.LoginPrompterFunc(func(context.Context) {
			logger.Debug().Msg("cart action requires sign-in")
		}),
		logger,
	)

	home.PreloadCriticalData(ctx)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(home, search, profile, cart, kv, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger, prometheus.DefaultGatherer)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	home.Wait()
	return nil
}
