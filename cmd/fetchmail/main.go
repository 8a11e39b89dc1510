package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/ingest"
	"github.com/spec-kit/helpdesk/internal/mail"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/storage"
	"github.com/spec-kit/helpdesk/internal/worker"
)

// fetchmail polls the support mailbox once and turns unseen emails into
// tickets. It is meant to run on an external schedule (cron or similar);
// each invocation is one batch.
func main() {
	limit := flag.Int("limit", 0, "maximum messages to process this run (0 uses INGEST_BATCH_LIMIT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	batchLimit := cfg.Ingest.BatchLimit
	if *limit > 0 {
		batchLimit = *limit
	}

	if err := run(cfg, logger, batchLimit); err != nil {
		logger.Error("mailbox poll aborted", zap.Error(err))
		os.Exit(1)
	}
}

// run wires the pipeline and executes one poll. Any returned error is a
// setup failure; per-message errors are absorbed into the summary.
func run(cfg *config.Config, logger *zap.Logger, batchLimit int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		return err
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return err
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	objects, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}

	mailbox, err := mail.Connect(cfg.IMAP, logger)
	if err != nil {
		return err
	}
	defer mailbox.Close()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notify))

	pool := pg.PoolHandle()
	metrics := observability.NewMetrics()
	engine := ingest.NewEngine(ingest.EngineDependencies{
		Tickets:    ingest.NewTicketStore(pool),
		Contacts:   ingest.NewContactStore(pool),
		Objects:    objects,
		Dedup:      ingest.NewRedisDedup(redis.Client, cfg.Ingest.DedupTTL()),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	runner := ingest.NewRunner(mailbox, engine, metrics, logger)

	since := time.Now().Add(-cfg.Ingest.Lookback())
	summary, err := runner.Run(ctx, since, batchLimit)
	if err != nil {
		return err
	}

	logger.Info("fetchmail run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
		zap.Int("total", summary.Total),
		zap.Any("outcomes", metrics.IngestCounts()))
	return nil
}
