package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/queue"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const (
	testRetailerUserID   = uint(100)
	testWholesalerUserID = uint(200)
	testPartnerUserID    = uint(300)
	testPartnerID        = uint(300)
)

func setupDeliveryServiceTest(t *testing.T) (*DeliveryService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:delivery_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.DeliveryPartner{},
		&models.DeliveryStatusUpdate{},
		&models.DeliveryProof{},
		&models.DeliveryPartnerEarning{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	cfg := config.DeliveryConfig{EarningRatePercent: 5, MinEarning: 20}
	earningSvc := NewEarningService(repository.NewEarningRepository(db), cfg)
	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), queueClient)
	svc := NewDeliveryService(
		db,
		repository.NewOrderRepository(db),
		repository.NewDeliveryEventRepository(db),
		repository.NewDeliveryProofRepository(db),
		repository.NewDeliveryPartnerRepository(db),
		earningSvc,
		notifySvc,
	)

	uid := testPartnerUserID
	if err := db.Create(&models.DeliveryPartner{ID: testPartnerID, UserID: &uid, Name: "Test Partner"}).Error; err != nil {
		t.Fatalf("seed partner failed: %v", err)
	}
	return svc, db
}

func seedPlacedOrder(t *testing.T, db *gorm.DB, id uint, total float64) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            id,
		OrderNo:       fmt.Sprintf("ORD-%d", id),
		RetailerID:    testRetailerUserID,
		WholesalerID:  testWholesalerUserID,
		Status:        constants.OrderStatusPlaced,
		PaymentMethod: constants.PaymentMethodCOD,
		PaymentStatus: constants.PaymentStatusPending,
		TotalAmount:   models.NewMoneyFromFloat(total),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func wholesalerActor() Actor {
	return Actor{UserID: testWholesalerUserID, Role: constants.RoleWholesaler}
}

func partnerActor() Actor {
	return Actor{UserID: testPartnerUserID, Role: constants.RoleDeliveryPartner}
}

func TestTransitionHappyPath(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	steps := []TransitionInput{
		{OrderID: 1, Target: constants.OrderStatusConfirmed, Actor: wholesalerActor()},
		{OrderID: 1, Target: constants.OrderStatusDispatched, Actor: wholesalerActor(), DeliveryPartnerID: testPartnerID},
		{OrderID: 1, Target: constants.OrderStatusInTransit, Actor: partnerActor()},
		{OrderID: 1, Target: constants.OrderStatusOutForDelivery, Actor: partnerActor()},
		{OrderID: 1, Target: constants.OrderStatusDelivered, Actor: partnerActor(), Proof: &ProofInput{ReceiverName: "Shopkeeper"}},
	}
	for _, step := range steps {
		if _, err := svc.Transition(step); err != nil {
			t.Fatalf("transition to %s failed: %v", step.Target, err)
		}
	}

	order, err := svc.GetOrder(1)
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if order.Status != constants.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}
	if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID != testPartnerID {
		t.Fatalf("expected partner assigned, got %+v", order.DeliveryPartnerID)
	}
	if order.DeliveredAt == nil {
		t.Fatalf("expected delivered_at set")
	}

	events, err := svc.ListEvents(1)
	if err != nil {
		t.Fatalf("ListEvents error: %v", err)
	}
	wantEvents := []string{
		constants.DeliveryEventAssigned,
		constants.DeliveryEventPickedUp,
		constants.DeliveryEventInTransit,
		constants.DeliveryEventDelivered,
	}
	if len(events) != len(wantEvents) {
		t.Fatalf("expected %d events, got %d", len(wantEvents), len(events))
	}
	for i, want := range wantEvents {
		if events[i].Status != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, events[i].Status)
		}
	}

	proof, err := svc.GetProof(1)
	if err != nil {
		t.Fatalf("GetProof error: %v", err)
	}
	if proof.ReceiverName != "Shopkeeper" {
		t.Fatalf("unexpected proof: %+v", proof)
	}

	var earning models.DeliveryPartnerEarning
	if err := db.Where("order_id = ?", 1).First(&earning).Error; err != nil {
		t.Fatalf("expected earning credited: %v", err)
	}
	if earning.DeliveryPartnerID != testPartnerID {
		t.Fatalf("earning credited to wrong partner: %+v", earning)
	}
	// 5% of 500 is 25.
	if earning.Amount.String() != "25.00" {
		t.Fatalf("expected 25.00 earning, got %s", earning.Amount.String())
	}
}

func TestTransitionInvalidLeap(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	if _, err := svc.Transition(TransitionInput{
		OrderID: 1,
		Target:  constants.OrderStatusDelivered,
		Actor:   partnerActor(),
	}); !errors.Is(err, ErrNotAuthorized) && !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected rejection, got %v", err)
	}

	order, err := svc.GetOrder(1)
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if order.Status != constants.OrderStatusPlaced {
		t.Fatalf("expected status unchanged, got %s", order.Status)
	}
}

func TestTransitionAdminInvalidLeap(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	if _, err := svc.Transition(TransitionInput{
		OrderID: 1,
		Target:  constants.OrderStatusDelivered,
		Actor:   Actor{UserID: 1, Role: constants.RoleAdmin},
	}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransitionAuthorization(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	// A stranger cannot confirm someone else's order.
	if _, err := svc.Transition(TransitionInput{
		OrderID: 1,
		Target:  constants.OrderStatusConfirmed,
		Actor:   Actor{UserID: 999, Role: constants.RoleWholesaler},
	}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	if _, err := svc.Transition(TransitionInput{OrderID: 1, Target: constants.OrderStatusConfirmed, Actor: wholesalerActor()}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.Transition(TransitionInput{OrderID: 1, Target: constants.OrderStatusDispatched, Actor: wholesalerActor(), DeliveryPartnerID: testPartnerID}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// A partner not assigned to the order cannot drive it.
	other := uint(301)
	otherUser := uint(301)
	if err := db.Create(&models.DeliveryPartner{ID: other, UserID: &otherUser, Name: "Other"}).Error; err != nil {
		t.Fatalf("seed other partner failed: %v", err)
	}
	if _, err := svc.Transition(TransitionInput{
		OrderID: 1,
		Target:  constants.OrderStatusInTransit,
		Actor:   Actor{UserID: otherUser, Role: constants.RoleDeliveryPartner},
	}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for unassigned partner, got %v", err)
	}
}

func TestTransitionDispatchRequiresPartner(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	if _, err := svc.Transition(TransitionInput{OrderID: 1, Target: constants.OrderStatusConfirmed, Actor: wholesalerActor()}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.Transition(TransitionInput{
		OrderID: 1,
		Target:  constants.OrderStatusDispatched,
		Actor:   wholesalerActor(),
	}); !errors.Is(err, ErrPartnerNotFound) {
		t.Fatalf("expected ErrPartnerNotFound, got %v", err)
	}
}

func TestTransitionRetrySameTargetRepairsWithoutDuplicates(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	inputs := []TransitionInput{
		{OrderID: 1, Target: constants.OrderStatusConfirmed, Actor: wholesalerActor()},
		{OrderID: 1, Target: constants.OrderStatusDispatched, Actor: wholesalerActor(), DeliveryPartnerID: testPartnerID},
		{OrderID: 1, Target: constants.OrderStatusInTransit, Actor: partnerActor()},
		{OrderID: 1, Target: constants.OrderStatusOutForDelivery, Actor: partnerActor()},
		{OrderID: 1, Target: constants.OrderStatusDelivered, Actor: partnerActor()},
	}
	for _, input := range inputs {
		if _, err := svc.Transition(input); err != nil {
			t.Fatalf("transition to %s failed: %v", input.Target, err)
		}
	}

	// Replaying the final transition must not duplicate the event or the
	// earning credit.
	if _, err := svc.Transition(TransitionInput{OrderID: 1, Target: constants.OrderStatusDelivered, Actor: partnerActor()}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	var eventCount int64
	if err := db.Model(&models.DeliveryStatusUpdate{}).
		Where("order_id = ? AND status = ?", 1, constants.DeliveryEventDelivered).
		Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected one delivered event, got %d", eventCount)
	}

	var earningCount int64
	if err := db.Model(&models.DeliveryPartnerEarning{}).Where("order_id = ?", 1).Count(&earningCount).Error; err != nil {
		t.Fatalf("count earnings failed: %v", err)
	}
	if earningCount != 1 {
		t.Fatalf("expected one earning row, got %d", earningCount)
	}
}

func TestTransitionRepairsLostEventOnRetry(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	inputs := []TransitionInput{
		{OrderID: 1, Target: constants.OrderStatusConfirmed, Actor: wholesalerActor()},
		{OrderID: 1, Target: constants.OrderStatusDispatched, Actor: wholesalerActor(), DeliveryPartnerID: testPartnerID},
		{OrderID: 1, Target: constants.OrderStatusInTransit, Actor: partnerActor()},
	}
	for _, input := range inputs {
		if _, err := svc.Transition(input); err != nil {
			t.Fatalf("transition to %s failed: %v", input.Target, err)
		}
	}

	// Simulate a lost event-log write: order advanced, history row gone.
	if err := db.Where("order_id = ? AND status = ?", 1, constants.DeliveryEventPickedUp).
		Delete(&models.DeliveryStatusUpdate{}).Error; err != nil {
		t.Fatalf("drop event failed: %v", err)
	}

	if _, err := svc.Transition(TransitionInput{OrderID: 1, Target: constants.OrderStatusInTransit, Actor: partnerActor()}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.DeliveryStatusUpdate{}).
		Where("order_id = ? AND status = ?", 1, constants.DeliveryEventPickedUp).
		Count(&count).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected repaired event, got %d rows", count)
	}
}

func TestTransitionFailedIsRecoverable(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedPlacedOrder(t, db, 1, 500)

	inputs := []TransitionInput{
		{OrderID: 1, Target: constants.OrderStatusConfirmed, Actor: wholesalerActor()},
		{OrderID: 1, Target: constants.OrderStatusDispatched, Actor: wholesalerActor(), DeliveryPartnerID: testPartnerID},
		{OrderID: 1, Target: constants.OrderStatusInTransit, Actor: partnerActor()},
		{OrderID: 1, Target: constants.OrderStatusFailed, Actor: partnerActor(), Notes: "shop closed"},
		{OrderID: 1, Target: constants.OrderStatusInTransit, Actor: partnerActor()},
		{OrderID: 1, Target: constants.OrderStatusOutForDelivery, Actor: partnerActor()},
		{OrderID: 1, Target: constants.OrderStatusDelivered, Actor: partnerActor()},
	}
	for _, input := range inputs {
		if _, err := svc.Transition(input); err != nil {
			t.Fatalf("transition to %s failed: %v", input.Target, err)
		}
	}

	order, err := svc.GetOrder(1)
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if order.Status != constants.OrderStatusDelivered {
		t.Fatalf("expected delivered after retry, got %s", order.Status)
	}
}

func TestTransitionOrderNotFound(t *testing.T) {
	svc, _ := setupDeliveryServiceTest(t)
	if _, err := svc.Transition(TransitionInput{OrderID: 404, Target: constants.OrderStatusConfirmed, Actor: wholesalerActor()}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
