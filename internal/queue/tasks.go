package queue

import (
	"encoding/json"

	"github.com/retailsetu/delivery-engine/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationPush delivers a stored notification over the realtime
	// channel.
	TaskNotificationPush = constants.TaskNotificationPush
	// TaskOrderReconcile rebuilds an order's status from its event log.
	TaskOrderReconcile = constants.TaskOrderReconcile
)

// NotificationPushPayload identifies the notification row to push. The
// payload carries ids only; the worker re-reads the row so the pushed body is
// always the committed one.
type NotificationPushPayload struct {
	NotificationID uint `json:"notification_id"`
	UserID         uint `json:"user_id"`
}

// OrderReconcilePayload identifies the order to reconcile.
type OrderReconcilePayload struct {
	OrderID uint `json:"order_id"`
}

// NewNotificationPushTask builds a push task.
func NewNotificationPushTask(payload NotificationPushPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationPush, body), nil
}

// NewOrderReconcileTask builds a reconcile task.
func NewOrderReconcileTask(payload OrderReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderReconcile, body), nil
}
