package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/retailsetu/delivery-engine/internal/cache"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/provider"
	"github.com/retailsetu/delivery-engine/internal/queue"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued engine tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationPush, c.handleNotificationPush)
	mux.HandleFunc(queue.TaskOrderReconcile, c.handleOrderReconcile)
}

// pushChannelFor is the per-user realtime channel name.
func pushChannelFor(userID uint) string {
	return fmt.Sprintf("notify:user:%d", userID)
}

func (c *Consumer) handleNotificationPush(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_push_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationPushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_push_unmarshal_failed", "error", err)
		return err
	}
	if payload.NotificationID == 0 {
		logger.Debugw("worker_notification_push_skip_invalid_payload", "notification_id", payload.NotificationID)
		return nil
	}

	// Re-read the row: the committed content is what gets pushed.
	notification, err := c.NotificationRepo.GetByID(payload.NotificationID)
	if err != nil {
		logger.Warnw("worker_notification_push_fetch_failed", "notification_id", payload.NotificationID, "error", err)
		return err
	}
	if notification == nil {
		logger.Debugw("worker_notification_push_skip_not_found", "notification_id", payload.NotificationID)
		return nil
	}

	if !cache.Enabled() {
		// Without the push channel the durable row still reaches the user
		// on the next fetch.
		logger.Debugw("worker_notification_push_skip_cache_disabled", "notification_id", notification.ID)
		return nil
	}
	if err := cache.PublishJSON(ctx, pushChannelFor(notification.UserID), notification); err != nil {
		logger.Warnw("worker_notification_push_publish_failed",
			"notification_id", notification.ID,
			"user_id", notification.UserID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderReconcile(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_reconcile_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.ReconcileService == nil {
		logger.Warnw("worker_order_reconcile_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	changed, err := c.ReconcileService.ReconcileOrder(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_reconcile_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_reconcile_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if changed {
		logger.Infow("worker_order_reconcile_repaired", "order_id", payload.OrderID)
	}
	return nil
}
