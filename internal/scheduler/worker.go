package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"brandscope_backend/internal/analysis/service"
	"brandscope_backend/platform/config"
	"brandscope_backend/platform/logger"
)

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	analysis *service.Service
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, analysisSvc *service.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		analysis: analysisSvc,
		log:      log,
	}

	mux.HandleFunc(TaskSweepPending, w.handleSweepPending)

	return w, nil
}

func (w *Worker) handleSweepPending(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSweepPendingPayload(task)
	if err != nil {
		return err
	}

	summary, err := w.analysis.Sweep(ctx, payload.Limit)
	if err != nil {
		return fmt.Errorf("sweep pending: %w", err)
	}

	w.log.Info("scheduler: sweep task done",
		"picked", summary.Picked,
		"processed", summary.Processed,
		"requeued", summary.Requeued,
		"failed", summary.Failed)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
