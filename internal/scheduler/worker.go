package scheduler

import (
	"context"
	"fmt"

	"educare/platform/config"
	"educare/platform/logger"

	"github.com/hibiken/asynq"
)

// ObjectDeleter removes stored objects.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, bucket, fileKey string) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	storage ObjectDeleter
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, storage ObjectDeleter, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		storage: storage,
		log:     log,
	}
	w.mux.HandleFunc(TaskStorageCleanup, w.handleStorageCleanup)

	return w, nil
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

func (w *Worker) handleStorageCleanup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStorageCleanupPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.Bucket == "" || payload.FileKey == "" {
		return fmt.Errorf("%w: empty bucket or key", asynq.SkipRetry)
	}

	if err := w.storage.DeleteObject(ctx, payload.Bucket, payload.FileKey); err != nil {
		w.log.StorageCleanupFailed(payload.Bucket, payload.FileKey, err)
		return err
	}

	w.log.Info("orphaned upload removed", "bucket", payload.Bucket, "key", payload.FileKey)
	return nil
}
