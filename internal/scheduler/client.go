package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"restockd_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Enqueuer schedules profile follow-up jobs. taskID deduplicates: a second
// enqueue with the same id is a no-op.
type Enqueuer interface {
	EnqueueGeocodeProfile(ctx context.Context, payload GeocodeProfilePayload, taskID string) error
	EnqueueWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload, taskID string) error
}

type Client struct {
	client *asynq.Client
	queue  string
}

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

func (c *Client) EnqueueGeocodeProfile(ctx context.Context, payload GeocodeProfilePayload, taskID string) error {
	task, err := NewGeocodeProfileTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, taskID, asynq.MaxRetry(5))
}

func (c *Client) EnqueueWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload, taskID string) error {
	task, err := NewWelcomeEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, taskID, asynq.MaxRetry(3))
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, taskID string, opts ...asynq.Option) error {
	if c == nil || c.client == nil {
		return nil
	}

	opts = append(opts, asynq.Queue(c.queue))
	if taskID != "" {
		opts = append(opts, asynq.TaskID(taskID))
	}

	_, err := c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
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

var _ Enqueuer = (*Client)(nil)
