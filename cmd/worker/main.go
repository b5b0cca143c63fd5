package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"terraflow_backend/internal/adapters"
	authrepo "terraflow_backend/internal/auth/repository"
	"terraflow_backend/internal/email"
	leadrepo "terraflow_backend/internal/leads/repository"
	"terraflow_backend/internal/notification"
	"terraflow_backend/internal/scheduler"
	"terraflow_backend/platform/config"
	"terraflow_backend/platform/db"
	"terraflow_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	agentResolver := adapters.NewAgentResolverAdapter(authrepo.New(pool))
	notificationModule := notification.New(sender, agentResolver, cfg, log)

	worker, err := scheduler.NewWorker(cfg, leadrepo.New(pool), notificationModule, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		panic("failed to initialize task client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		worker.Run(ctx)
		return nil
	})

	// Periodically queue an attention scan so stalled Contacted leads turn
	// into digests without an external cron.
	g.Go(func() error {
		interval := cfg.GetAttentionScanInterval()
		if interval <= 0 {
			interval = 6 * time.Hour
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := client.EnqueueAttentionScan(ctx); err != nil {
					log.Error("failed to enqueue attention scan", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Error("worker stopped", "error", err)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
