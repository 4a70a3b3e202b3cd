package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brandscope_backend/internal/adapters"
	"brandscope_backend/internal/analysis"
	"brandscope_backend/internal/email"
	"brandscope_backend/internal/events"
	"brandscope_backend/internal/leads"
	"brandscope_backend/internal/notification"
	"brandscope_backend/internal/scheduler"
	"brandscope_backend/platform/config"
	"brandscope_backend/platform/db"
	"brandscope_backend/platform/logger"
	"brandscope_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

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

	eventBus := events.NewInMemoryBus(log)

	// Notification module consumes the resolved events the sweeper publishes.
	notificationModule := notification.New(email.NewSender(cfg), log)
	notificationModule.Subscribe(eventBus)

	val := validator.New()

	// Worker-side analysis wiring (no HTTP handlers required).
	analysisModule, err := analysis.NewModule(ctx, pool, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize analysis module", "error", err)
		panic("failed to initialize analysis module: " + err.Error())
	}

	leadsService := leads.NewService(leads.NewRepository(pool), log)
	analysisModule.SetLeadRecorder(adapters.NewLeadStatusRecorder(leadsService, log))

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()
	go runSweepTicker(ctx, cfg, client, log)

	worker, err := scheduler.NewWorker(cfg, analysisModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

// runSweepTicker enqueues a sweep task every sweep interval until shutdown.
func runSweepTicker(ctx context.Context, cfg config.SchedulerConfig, client *scheduler.Client, log *logger.Logger) {
	interval := cfg.GetSweepInterval()
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.EnqueueSweep(ctx, scheduler.SweepPendingPayload{Limit: cfg.GetSweepBatchSize()}); err != nil {
				log.Error("failed to enqueue sweep task", "error", err)
			}
		}
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
