package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moneta/internal/amqp"
	"moneta/internal/cache"
	"moneta/internal/config"
	"moneta/internal/currency"
	apphttp "moneta/internal/http"
	"moneta/internal/insights"
	"moneta/internal/log"
	"moneta/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
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

	// Periodic sweep keeps expired entries from lingering between reads.
	cacheManager := cache.NewManager()
	cacheManager.Register(svc.ResultCache())
	cacheManager.StartCleanup(cfg.CacheSweep)
	defer cacheManager.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Transaction mutations elsewhere in the system arrive as change
	// messages; each one busts the insight cache. AMQP being down degrades
	// to manual invalidation via the API, it does not stop the server.
	if client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue); err != nil {
		logger.Warn("AMQP unavailable, cache invalidation is manual only",
			log.FieldError, err.Error())
	} else {
		defer client.Close()
		go func() {
			err := client.ConsumeTransactionChanges(ctx, func(msg *amqp.TransactionChangeMessage) error {
				svc.InvalidateCache()
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumption stopped", log.FieldError, err.Error())
			}
		}()
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, cfg.BaseCurrency, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting moneta", "addr", srv.Addr, log.FieldCurrency, cfg.BaseCurrency)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
