package service

import (
	"fmt"

	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/queue"
	"github.com/retailsetu/delivery-engine/internal/repository"
)

// Event is the tagged union handed to Notify. Kind selects which payload
// fields are meaningful; the zero values of the others are ignored.
type Event struct {
	Kind string // constants.NotificationEntity*

	Order *models.Order

	// Status payload: the lifecycle status the order just reached.
	Status string
	// Partner payload: the assigned partner, set for dispatch events.
	Partner *models.DeliveryPartner

	// Payment payload.
	PaymentFailed bool
	Amount        models.Money
	Reason        string
}

// NotificationService fans lifecycle and payment events out to their
// audiences. Every recipient gets a durable inbox row first; the realtime
// push rides on the queue and may be lost without losing the notification.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	queueClient      *queue.Client
}

// NewNotificationService creates a fan-out service.
func NewNotificationService(notificationRepo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		queueClient:      queueClient,
	}
}

// Notify resolves the event's audience, stores one notification per
// recipient, and queues a push for each stored row. Returns the ids of the
// stored rows. A recipient that cannot be resolved is skipped with a warning
// rather than failing the rest of the fan-out.
func (s *NotificationService) Notify(event Event) ([]uint, error) {
	if event.Order == nil {
		return nil, ErrOrderNotFound
	}

	var ids []uint
	for _, target := range s.resolveTargets(event) {
		notification := &models.Notification{
			UserID:     target.userID,
			Title:      target.title,
			Message:    target.message,
			Type:       target.notifType,
			EntityType: constants.NotificationEntityOrder,
			EntityID:   event.Order.ID,
			ActionURL:  fmt.Sprintf("/orders/%d", event.Order.ID),
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			return ids, err
		}
		ids = append(ids, notification.ID)

		if err := s.queueClient.EnqueueNotificationPush(queue.NotificationPushPayload{
			NotificationID: notification.ID,
			UserID:         notification.UserID,
		}); err != nil {
			// The inbox row is the delivery guarantee; a failed push
			// enqueue only delays the realtime nudge.
			logger.Warnw("notification_push_enqueue_failed",
				"notification_id", notification.ID,
				"user_id", notification.UserID,
				"error", err,
			)
		}
	}
	return ids, nil
}

type notifyTarget struct {
	userID    uint
	title     string
	message   string
	notifType string
}

func (s *NotificationService) resolveTargets(event Event) []notifyTarget {
	order := event.Order
	switch event.Kind {
	case constants.NotificationEntityDelivery:
		return s.statusTargets(event)
	case constants.NotificationEntityPayment:
		if event.PaymentFailed {
			return []notifyTarget{{
				userID:    order.RetailerID,
				title:     "Payment issue",
				message:   fmt.Sprintf("Payment for order %s could not be recorded: %s", order.OrderNo, event.Reason),
				notifType: constants.NotificationTypePayment,
			}}
		}
		return []notifyTarget{{
			userID:    order.WholesalerID,
			title:     "Cash collected",
			message:   fmt.Sprintf("Cash of %s received for order %s", event.Amount.String(), order.OrderNo),
			notifType: constants.NotificationTypePayment,
		}}
	default:
		logger.Warnw("notification_event_kind_unknown",
			"kind", event.Kind,
			"order_id", order.ID,
		)
		return nil
	}
}

func (s *NotificationService) statusTargets(event Event) []notifyTarget {
	order := event.Order
	both := func(title, msg string) []notifyTarget {
		return []notifyTarget{
			{userID: order.RetailerID, title: title, message: msg, notifType: constants.NotificationTypeDelivery},
			{userID: order.WholesalerID, title: title, message: msg, notifType: constants.NotificationTypeDelivery},
		}
	}

	switch event.Status {
	case constants.OrderStatusConfirmed:
		return []notifyTarget{{
			userID:    order.RetailerID,
			title:     "Order confirmed",
			message:   fmt.Sprintf("Order %s was confirmed by the supplier", order.OrderNo),
			notifType: constants.NotificationTypeOrder,
		}}
	case constants.OrderStatusRejected:
		return []notifyTarget{{
			userID:    order.RetailerID,
			title:     "Order rejected",
			message:   fmt.Sprintf("Order %s was rejected by the supplier", order.OrderNo),
			notifType: constants.NotificationTypeOrder,
		}}
	case constants.OrderStatusDispatched:
		// The assignment notice goes to the partner alone. An unlinked
		// partner has no inbox to write to; skip and leave the breadcrumb.
		if !event.Partner.Linked() {
			partnerID := uint(0)
			if event.Partner != nil {
				partnerID = event.Partner.ID
			}
			logger.Warnw("notification_partner_unlinked",
				"order_id", order.ID,
				"delivery_partner_id", partnerID,
			)
			return nil
		}
		return []notifyTarget{{
			userID:    *event.Partner.UserID,
			title:     "New delivery assigned",
			message:   fmt.Sprintf("You have been assigned order %s", order.OrderNo),
			notifType: constants.NotificationTypeDelivery,
		}}
	case constants.OrderStatusInTransit:
		return both("Order picked up", fmt.Sprintf("Order %s is on its way", order.OrderNo))
	case constants.OrderStatusOutForDelivery:
		return both("Out for delivery", fmt.Sprintf("Order %s is out for delivery", order.OrderNo))
	case constants.OrderStatusDelivered:
		return both("Order delivered", fmt.Sprintf("Order %s has been delivered", order.OrderNo))
	case constants.OrderStatusFailed:
		return both("Delivery attempt failed", fmt.Sprintf("Delivery of order %s failed and will be retried", order.OrderNo))
	default:
		return nil
	}
}

// ListForUser returns the user's inbox page plus the unpaginated total.
func (s *NotificationService) ListForUser(filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	return s.notificationRepo.ListForUser(filter)
}

// CountUnread returns the user's unread badge count.
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

// MarkRead marks one notification read on behalf of its owner. Reading an
// already-read notification succeeds without touching the row; reading
// someone else's is refused.
func (s *NotificationService) MarkRead(id, userID uint) error {
	notification, err := s.notificationRepo.GetByID(id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.UserID != userID {
		return ErrNotAuthorized
	}
	if notification.IsRead {
		return nil
	}
	// A concurrent read flip losing here is still a success: the row is
	// read either way.
	if _, err := s.notificationRepo.MarkRead(id, userID); err != nil {
		return err
	}
	return nil
}
