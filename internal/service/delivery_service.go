package service

import (
	"time"

	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"gorm.io/gorm"
)

// Actor identifies who is performing an engine operation.
type Actor struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

// ProofInput carries the handover evidence captured at delivery time.
type ProofInput struct {
	PhotoURL     string
	SignatureURL string
	ReceiverName string
	Notes        string
}

// TransitionInput is one requested lifecycle advance.
type TransitionInput struct {
	OrderID uint
	Target  string
	Actor   Actor

	// DeliveryPartnerID is required when dispatching: it assigns the order.
	DeliveryPartnerID uint

	Latitude  *float64
	Longitude *float64
	Notes     string

	// Proof is accepted only on the delivered transition.
	Proof *ProofInput
}

// transitionGraph is the allowed forward moves. Absence means
// ErrInvalidTransition. failed is recoverable: a fresh attempt re-enters
// in_transit.
var transitionGraph = map[string][]string{
	constants.OrderStatusPlaced:         {constants.OrderStatusConfirmed, constants.OrderStatusRejected},
	constants.OrderStatusConfirmed:      {constants.OrderStatusDispatched},
	constants.OrderStatusDispatched:     {constants.OrderStatusInTransit, constants.OrderStatusFailed},
	constants.OrderStatusInTransit:      {constants.OrderStatusOutForDelivery, constants.OrderStatusFailed},
	constants.OrderStatusOutForDelivery: {constants.OrderStatusDelivered},
	constants.OrderStatusFailed:         {constants.OrderStatusInTransit},
}

// eventForStatus maps an order status to its event-log entry. Statuses from
// the pre-assignment phase (confirmed, rejected) have no delivery event.
var eventForStatus = map[string]string{
	constants.OrderStatusDispatched:     constants.DeliveryEventAssigned,
	constants.OrderStatusInTransit:      constants.DeliveryEventPickedUp,
	constants.OrderStatusOutForDelivery: constants.DeliveryEventInTransit,
	constants.OrderStatusDelivered:      constants.DeliveryEventDelivered,
	constants.OrderStatusFailed:         constants.DeliveryEventFailed,
}

// wholesalerTransitions are driven by the order's owning wholesaler.
var wholesalerTransitions = map[string]bool{
	constants.OrderStatusConfirmed:  true,
	constants.OrderStatusDispatched: true,
	constants.OrderStatusRejected:   true,
}

// DeliveryService is the order lifecycle state machine. The Order row is the
// authoritative current state; the event log is append-only history and may
// lag behind it after a partial failure.
type DeliveryService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	eventRepo   repository.DeliveryEventRepository
	proofRepo   repository.DeliveryProofRepository
	partnerRepo repository.DeliveryPartnerRepository
	earningSvc  *EarningService
	notifySvc   *NotificationService
}

// NewDeliveryService creates the state machine service.
func NewDeliveryService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	eventRepo repository.DeliveryEventRepository,
	proofRepo repository.DeliveryProofRepository,
	partnerRepo repository.DeliveryPartnerRepository,
	earningSvc *EarningService,
	notifySvc *NotificationService,
) *DeliveryService {
	return &DeliveryService{
		db:          db,
		orderRepo:   orderRepo,
		eventRepo:   eventRepo,
		proofRepo:   proofRepo,
		partnerRepo: partnerRepo,
		earningSvc:  earningSvc,
		notifySvc:   notifySvc,
	}
}

// Transition advances an order one step along the lifecycle graph. The write
// is conditioned on the status read just before it, so of two racing callers
// exactly one wins; the loser gets ErrInvalidTransition. Retrying the same
// (order, target) pair after success or partial failure is safe: the status
// write is a no-op and the event log is repaired instead of duplicated.
func (s *DeliveryService) Transition(input TransitionInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	partner, err := s.authorize(order, input)
	if err != nil {
		return nil, err
	}

	if order.Status == input.Target {
		return s.retrySameTarget(order, input)
	}

	if !reachable(order.Status, input.Target) {
		return nil, ErrInvalidTransition
	}

	updates := map[string]interface{}{}
	now := time.Now()
	assignedPartner := partner
	switch input.Target {
	case constants.OrderStatusDispatched:
		if input.DeliveryPartnerID == 0 {
			return nil, ErrPartnerNotFound
		}
		assignedPartner, err = s.partnerRepo.GetByID(input.DeliveryPartnerID)
		if err != nil {
			return nil, err
		}
		if assignedPartner == nil {
			return nil, ErrPartnerNotFound
		}
		updates["delivery_partner_id"] = assignedPartner.ID
	case constants.OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	ok, err := s.orderRepo.UpdateStatusIf(order.ID, order.Status, input.Target, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent transition landed first. Re-check against the
		// moved state so an identical retry still reads as success.
		current, rerr := s.orderRepo.GetByID(order.ID)
		if rerr != nil {
			return nil, rerr
		}
		if current != nil && current.Status == input.Target {
			return current, nil
		}
		return nil, ErrInvalidTransition
	}

	previous := order.Status
	order.Status = input.Target
	if input.Target == constants.OrderStatusDispatched {
		order.DeliveryPartnerID = &assignedPartner.ID
	}
	if input.Target == constants.OrderStatusDelivered {
		order.DeliveredAt = &now
	}

	s.appendEvent(order, input)

	if input.Target == constants.OrderStatusDelivered {
		if err := s.completeDelivery(order, input); err != nil {
			// The order is delivered regardless; the credit retries via
			// the idempotent path on the next call.
			logger.Errorw("delivery_completion_side_effects_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
	}

	s.fanOutStatus(order, assignedPartner)

	logger.Infow("order_status_advanced",
		"order_id", order.ID,
		"from", previous,
		"to", order.Status,
		"actor_user_id", input.Actor.UserID,
	)
	return order, nil
}

// retrySameTarget handles the redelivery of a transition that already won:
// the status write is skipped and only the history and side effects are
// made whole.
func (s *DeliveryService) retrySameTarget(order *models.Order, input TransitionInput) (*models.Order, error) {
	eventStatus, hasEvent := eventForStatus[order.Status]
	if hasEvent {
		latest, err := s.eventRepo.LatestForOrder(order.ID)
		if err != nil {
			return nil, err
		}
		if latest == nil || latest.Status != eventStatus {
			s.appendEvent(order, input)
		}
	}
	if order.Status == constants.OrderStatusDelivered {
		if err := s.completeDelivery(order, input); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// authorize resolves and checks the acting party. Partner-driven transitions
// require the actor to be the assigned partner's linked account; wholesaler
// transitions require the owning wholesaler. Admins pass both gates.
func (s *DeliveryService) authorize(order *models.Order, input TransitionInput) (*models.DeliveryPartner, error) {
	if input.Actor.IsAdmin() {
		if order.DeliveryPartnerID != nil {
			return s.partnerRepo.GetByID(*order.DeliveryPartnerID)
		}
		return nil, nil
	}

	if wholesalerTransitions[input.Target] {
		if input.Actor.UserID != order.WholesalerID {
			return nil, ErrNotAuthorized
		}
		return nil, nil
	}

	partner, err := s.partnerRepo.GetByUserID(input.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrNotAuthorized
	}
	if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID != partner.ID {
		return nil, ErrNotAuthorized
	}
	return partner, nil
}

// appendEvent writes the history row for a transition. History is
// best-effort: the Order row already holds the authoritative state, so an
// append failure is logged and reconciled later rather than unwinding the
// transition.
func (s *DeliveryService) appendEvent(order *models.Order, input TransitionInput) {
	eventStatus, ok := eventForStatus[order.Status]
	if !ok {
		return
	}
	partnerID := uint(0)
	if order.DeliveryPartnerID != nil {
		partnerID = *order.DeliveryPartnerID
	}
	update := &models.DeliveryStatusUpdate{
		OrderID:           order.ID,
		DeliveryPartnerID: partnerID,
		Status:            eventStatus,
		Latitude:          input.Latitude,
		Longitude:         input.Longitude,
		Notes:             input.Notes,
	}
	if err := s.eventRepo.Append(update); err != nil {
		logger.Warnw("delivery_event_append_failed",
			"order_id", order.ID,
			"status", eventStatus,
			"error", err,
		)
	}
}

// completeDelivery records the proof (at most once) and credits the earning
// (at most once) in a single transaction. Both sides are idempotent, so a
// replay after a partial failure converges instead of duplicating.
func (s *DeliveryService) completeDelivery(order *models.Order, input TransitionInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if input.Proof != nil {
			proofRepo := s.proofRepo.WithTx(tx)
			existing, err := proofRepo.GetByOrderID(order.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				partnerID := uint(0)
				if order.DeliveryPartnerID != nil {
					partnerID = *order.DeliveryPartnerID
				}
				if err := proofRepo.Create(&models.DeliveryProof{
					OrderID:           order.ID,
					DeliveryPartnerID: partnerID,
					PhotoURL:          input.Proof.PhotoURL,
					SignatureURL:      input.Proof.SignatureURL,
					ReceiverName:      input.Proof.ReceiverName,
					Notes:             input.Proof.Notes,
				}); err != nil {
					return err
				}
			}
		}
		_, err := s.earningSvc.CreditForDelivery(tx, order)
		return err
	})
}

// fanOutStatus publishes the transition to its audience. Notification
// failures never unwind a transition.
func (s *DeliveryService) fanOutStatus(order *models.Order, partner *models.DeliveryPartner) {
	if _, err := s.notifySvc.Notify(Event{
		Kind:    constants.NotificationEntityDelivery,
		Order:   order,
		Status:  order.Status,
		Partner: partner,
	}); err != nil {
		logger.Warnw("notification_fanout_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}
}

// ListEvents returns the full delivery history of an order ascending by
// time.
func (s *DeliveryService) ListEvents(orderID uint) ([]models.DeliveryStatusUpdate, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.eventRepo.ListForOrder(orderID)
}

// GetProof fetches the handover evidence for a delivered order.
func (s *DeliveryService) GetProof(orderID uint) (*models.DeliveryProof, error) {
	proof, err := s.proofRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, ErrOrderNotFound
	}
	return proof, nil
}

// GetOrder fetches an order for the read path.
func (s *DeliveryService) GetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns orders matching the filter.
func (s *DeliveryService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

func reachable(from, to string) bool {
	for _, next := range transitionGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}
