package service

import (
	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/repository"
)

// statusForEvent inverts the event mapping: the lifecycle status implied by
// the newest event-log entry.
var statusForEvent = map[string]string{
	constants.DeliveryEventAssigned:  constants.OrderStatusDispatched,
	constants.DeliveryEventPickedUp:  constants.OrderStatusInTransit,
	constants.DeliveryEventInTransit: constants.OrderStatusOutForDelivery,
	constants.DeliveryEventDelivered: constants.OrderStatusDelivered,
	constants.DeliveryEventFailed:    constants.OrderStatusFailed,
}

// statusRank orders the forward lifecycle for drift comparison. Terminal
// absorptions (rejected, cancelled) never participate in reconciliation.
var statusRank = map[string]int{
	constants.OrderStatusPlaced:         0,
	constants.OrderStatusConfirmed:      1,
	constants.OrderStatusDispatched:     2,
	constants.OrderStatusFailed:         2,
	constants.OrderStatusInTransit:      3,
	constants.OrderStatusOutForDelivery: 4,
	constants.OrderStatusDelivered:      5,
}

// ReconcileService is the explicit repair batch for drift between the Order
// row and its event log. It is never run implicitly on reads: reads trust
// the Order row, and this job is invoked on demand or from the queue.
type ReconcileService struct {
	orderRepo repository.OrderRepository
	eventRepo repository.DeliveryEventRepository
}

// NewReconcileService creates a reconciliation service.
func NewReconcileService(orderRepo repository.OrderRepository, eventRepo repository.DeliveryEventRepository) *ReconcileService {
	return &ReconcileService{
		orderRepo: orderRepo,
		eventRepo: eventRepo,
	}
}

// ReconcileOrder compares one order against its newest event and repairs
// whichever side lags. A log ahead of the row advances the row; a row ahead
// of the log gets a repair event appended. Returns true when anything was
// written.
func (s *ReconcileService) ReconcileOrder(orderID uint) (bool, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, ErrOrderNotFound
	}
	switch order.Status {
	case constants.OrderStatusRejected, constants.OrderStatusCancelled:
		return false, nil
	}

	latest, err := s.eventRepo.LatestForOrder(orderID)
	if err != nil {
		return false, err
	}

	expectedEvent, rowHasEvent := eventForStatus[order.Status]

	if latest == nil {
		if !rowHasEvent {
			return false, nil
		}
		return s.appendRepairEvent(order, expectedEvent)
	}

	implied, ok := statusForEvent[latest.Status]
	if !ok {
		return false, nil
	}

	if statusRank[implied] > statusRank[order.Status] {
		// The log got ahead of the projection: a status write was lost.
		moved, uerr := s.orderRepo.UpdateStatusIf(order.ID, order.Status, implied, nil)
		if uerr != nil {
			return false, uerr
		}
		if moved {
			logger.Infow("order_status_reconciled",
				"order_id", order.ID,
				"from", order.Status,
				"to", implied,
			)
		}
		return moved, nil
	}

	if rowHasEvent && latest.Status != expectedEvent && statusRank[order.Status] > statusRank[implied] {
		return s.appendRepairEvent(order, expectedEvent)
	}
	return false, nil
}

func (s *ReconcileService) appendRepairEvent(order *models.Order, eventStatus string) (bool, error) {
	partnerID := uint(0)
	if order.DeliveryPartnerID != nil {
		partnerID = *order.DeliveryPartnerID
	}
	if err := s.eventRepo.Append(&models.DeliveryStatusUpdate{
		OrderID:           order.ID,
		DeliveryPartnerID: partnerID,
		Status:            eventStatus,
		Notes:             "reconciled from order status",
	}); err != nil {
		return false, err
	}
	logger.Infow("delivery_event_reconciled",
		"order_id", order.ID,
		"status", eventStatus,
	)
	return true, nil
}

// ReconcileAll sweeps every non-terminal order. Intended for the admin batch
// endpoint; errors on individual orders are logged and skipped so one bad
// row cannot stall the sweep.
func (s *ReconcileService) ReconcileAll() (int, error) {
	statuses := []string{
		constants.OrderStatusDispatched,
		constants.OrderStatusInTransit,
		constants.OrderStatusOutForDelivery,
		constants.OrderStatusDelivered,
		constants.OrderStatusFailed,
	}
	repaired := 0
	for _, status := range statuses {
		page := 1
		for {
			orders, _, err := s.orderRepo.List(repository.OrderListFilter{
				Status:   status,
				Page:     page,
				PageSize: 200,
			})
			if err != nil {
				return repaired, err
			}
			if len(orders) == 0 {
				break
			}
			for _, order := range orders {
				changed, err := s.ReconcileOrder(order.ID)
				if err != nil {
					logger.Warnw("order_reconcile_failed",
						"order_id", order.ID,
						"error", err,
					)
					continue
				}
				if changed {
					repaired++
				}
			}
			if len(orders) < 200 {
				break
			}
			page++
		}
	}
	return repaired, nil
}
