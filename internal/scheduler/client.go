package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"educare/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	cleanupDelay      = time.Minute
	cleanupMaxRetries = 10
)

type Client struct {
	client *asynq.Client
	queue  string
}

// CleanupScheduler defers removal of uploads that could not be deleted inline.
type CleanupScheduler interface {
	ScheduleStorageCleanup(ctx context.Context, bucket, fileKey string) error
}

var _ CleanupScheduler = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleStorageCleanup enqueues a delayed, retried delete of fileKey.
// The task id is derived from the object so repeated failures for the
// same key collapse into one pending task.
func (c *Client) ScheduleStorageCleanup(ctx context.Context, bucket, fileKey string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewStorageCleanupTask(StorageCleanupPayload{Bucket: bucket, FileKey: fileKey})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.ProcessIn(cleanupDelay),
		asynq.MaxRetry(cleanupMaxRetries),
		asynq.TaskID(TaskStorageCleanup+":"+bucket+"/"+fileKey),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	return nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
