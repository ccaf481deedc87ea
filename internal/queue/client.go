package queue

import (
	"fmt"
	"strings"

	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue is where routine tasks land.
	DefaultQueue = constants.QueueDefault
	// CriticalQueue is for tasks that must not starve behind routine work.
	CriticalQueue = constants.QueueCritical
)

// Client wraps the asynq producer. With the queue disabled every enqueue is
// a silent no-op, so callers never branch on availability.
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient creates a queue client.
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled reports whether tasks actually reach a broker.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close shuts the producer down.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueNotificationPush queues a realtime push for a stored notification.
func (c *Client) EnqueueNotificationPush(payload NotificationPushPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewNotificationPushTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueueOrderReconcile queues an event-log reconciliation for an order.
func (c *Client) EnqueueOrderReconcile(payload OrderReconcilePayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderReconcileTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(CriticalQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig derives the consumer-side asynq settings.
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 10, CriticalQueue: 5}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
