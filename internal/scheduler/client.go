package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/mafiaidola/leads-manager-sub000/platform/config"
)

// redisConnOpt translates the configured Redis URL into an asynq
// connection option, honouring the TLS-insecure escape hatch for managed
// Redis providers with self-signed certificates.
func redisConnOpt(cfg config.SchedulerConfig) (asynq.RedisConnOpt, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() && opt.TLSConfig != nil {
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

// Client enqueues delivery tasks on the configured queue.
type Client struct {
	inner *asynq.Client
	queue string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	connOpt, err := redisConnOpt(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		inner: asynq.NewClient(connOpt),
		queue: cfg.GetAsynqQueueName(),
	}, nil
}

// EnqueueOutboxDelivery schedules one outbox record for delivery. Retries
// are owned by the outbox table, so the task itself never retries.
func (c *Client) EnqueueOutboxDelivery(ctx context.Context, recordID uuid.UUID, runAt time.Time) error {
	task, err := NewOutboxDeliverTask(recordID)
	if err != nil {
		return err
	}
	_, err = c.inner.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.ProcessAt(runAt),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return fmt.Errorf("enqueue outbox delivery %s: %w", recordID, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}
