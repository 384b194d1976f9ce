package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moneta/internal/config"
	"moneta/internal/core"
	"moneta/internal/currency"
	"moneta/internal/insights"
	"moneta/internal/log"
	"moneta/internal/storage"
)

// The worker keeps the precomputed aggregate tables fresh and optionally
// warms the long-range insight sets. Without it the year/allTime fast path
// never has data and every request pays the raw scan.
func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	conv := currency.NewRateTable(cfg.Rates)
	svc := insights.NewService(repo, repo, conv, insights.Options{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return refreshLoop(ctx, repo, cfg, logger)
	})

	if cfg.PrefetchOnStart {
		g.Go(func() error {
			prefetch(ctx, svc, cfg, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}

// refreshLoop rebuilds the aggregate tables once at startup and then on a
// fixed interval.
func refreshLoop(ctx context.Context, repo *storage.SQLiteRepository, cfg *config.Config, logger *log.Logger) error {
	refresh := func() {
		started := time.Now()
		if err := repo.RefreshAggregates(ctx, cfg.BaseCurrency); err != nil {
			logger.Error("Aggregate refresh failed",
				log.FieldOperation, log.OpRefresh,
				log.FieldError, err.Error())
			return
		}
		logger.Info("Aggregates refreshed",
			log.FieldOperation, log.OpRefresh,
			log.FieldCurrency, cfg.BaseCurrency,
			log.FieldDuration, time.Since(started).Milliseconds())
	}

	refresh()

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresh()
		}
	}
}

// prefetch warms the cache for the granularities a dashboard asks for first.
func prefetch(ctx context.Context, svc *insights.Service, cfg *config.Config, logger *log.Logger) {
	for _, g := range []core.Granularity{core.Month, core.Year, core.AllTime} {
		if ctx.Err() != nil {
			return
		}
		if _, err := svc.GenerateAllInsights(ctx, g, cfg.BaseCurrency); err != nil {
			logger.Warn("Prefetch failed",
				log.FieldOperation, log.OpPrefetch,
				log.FieldGranularity, string(g),
				log.FieldError, err.Error())
		}
	}
	logger.Info("Prefetch complete", log.FieldOperation, log.OpPrefetch)
}
