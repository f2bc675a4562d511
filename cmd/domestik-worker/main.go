package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Jvagarinho/Domestik/internal/amqp"
	"github.com/Jvagarinho/Domestik/internal/config"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/log"
	"github.com/Jvagarinho/Domestik/internal/sheets"
	"github.com/Jvagarinho/Domestik/internal/sheets/google"
	"github.com/Jvagarinho/Domestik/internal/storage"
	"github.com/Jvagarinho/Domestik/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: log.ComponentWorker,
	})
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

	broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to connect to message broker", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer broker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mirror sheets.ServiceMirror
	if cfg.SheetsEnabled() {
		gs, err := google.NewFromConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to configure sheets mirror", "error", err)
			os.Exit(1)
		}
		mirror = gs
		logger.Info("sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	w := worker.NewMirrorWorker(repo, mirror, cfg.ExportDir, i18n.Parse(cfg.DefaultLocale))

	// Seed current-month artifacts before consuming so a fresh deploy has
	// reports without waiting for the first event.
	if err := w.RebuildAll(ctx); err != nil {
		logger.Warn("initial rebuild failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return broker.ConsumeMutations(ctx, func(msg *amqp.MutationMessage) error {
			return w.HandleMutation(ctx, msg)
		})
	})
	g.Go(func() error {
		return w.RunPeriodic(ctx, cfg.RebuildInterval)
	})

	logger.Info("worker started",
		"queue", cfg.AMQPQueue,
		"export_dir", cfg.ExportDir,
		"rebuild_interval", cfg.RebuildInterval.String())

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
