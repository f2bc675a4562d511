package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jvagarinho/Domestik/internal/amqp"
	"github.com/Jvagarinho/Domestik/internal/config"
	"github.com/Jvagarinho/Domestik/internal/http"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/log"
	"github.com/Jvagarinho/Domestik/internal/services"
	"github.com/Jvagarinho/Domestik/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := i18n.Verify(); err != nil {
		logger.Error("locale dictionaries out of sync", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Mutation events are best effort. Without a broker the app still
	// serves; the mirror worker just sees nothing until it reconnects.
	var publisher services.Publisher
	broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("message broker unavailable, mutation events disabled", "error", err)
	} else {
		publisher = broker
		defer broker.Close()
	}

	ledger := services.NewLedger(repo, publisher)

	server := http.NewServer(http.Options{
		Addr:           ":" + cfg.Port,
		JWTSecret:      cfg.JWTSecret,
		DefaultLocale:  i18n.Parse(cfg.DefaultLocale),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, ledger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}
