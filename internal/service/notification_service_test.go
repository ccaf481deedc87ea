package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/queue"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotificationServiceTest(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	return NewNotificationService(repository.NewNotificationRepository(db), queueClient), db
}

func testOrder() *models.Order {
	return &models.Order{
		ID:           1,
		OrderNo:      "ORD-1",
		RetailerID:   100,
		WholesalerID: 200,
	}
}

func TestNotifyStatusChangeReachesBothTraders(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	ids, err := svc.Notify(Event{
		Kind:   constants.NotificationEntityDelivery,
		Order:  testOrder(),
		Status: constants.OrderStatusDelivered,
	})
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(ids))
	}

	for _, userID := range []uint{100, 200} {
		var notif models.Notification
		if err := db.Where("user_id = ?", userID).First(&notif).Error; err != nil {
			t.Fatalf("expected notification for user %d: %v", userID, err)
		}
		if notif.EntityType != constants.NotificationEntityOrder || notif.EntityID != 1 {
			t.Fatalf("unexpected entity reference: %+v", notif)
		}
		if notif.IsRead {
			t.Fatalf("new notification must be unread")
		}
	}
}

func TestNotifyRejectionReachesRetailerOnly(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	ids, err := svc.Notify(Event{
		Kind:   constants.NotificationEntityDelivery,
		Order:  testOrder(),
		Status: constants.OrderStatusRejected,
	})
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ids))
	}
	var count int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", 200).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("wholesaler must not be notified on rejection")
	}
}

func TestNotifyAssignmentTargetsLinkedPartner(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	partnerUser := uint(300)
	ids, err := svc.Notify(Event{
		Kind:    constants.NotificationEntityDelivery,
		Order:   testOrder(),
		Status:  constants.OrderStatusDispatched,
		Partner: &models.DeliveryPartner{ID: 5, UserID: &partnerUser},
	})
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ids))
	}
}

func TestNotifyAssignmentSkipsUnlinkedPartner(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	ids, err := svc.Notify(Event{
		Kind:    constants.NotificationEntityDelivery,
		Order:   testOrder(),
		Status:  constants.OrderStatusDispatched,
		Partner: &models.DeliveryPartner{ID: 5},
	})
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected skip for unlinked partner, got %d notifications", len(ids))
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func TestNotifyPaymentEvents(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	if _, err := svc.Notify(Event{
		Kind:   constants.NotificationEntityPayment,
		Order:  testOrder(),
		Amount: models.NewMoneyFromFloat(500),
	}); err != nil {
		t.Fatalf("receipt Notify error: %v", err)
	}
	var notif models.Notification
	if err := db.Where("user_id = ?", 200).First(&notif).Error; err != nil {
		t.Fatalf("expected wholesaler receipt: %v", err)
	}

	if _, err := svc.Notify(Event{
		Kind:          constants.NotificationEntityPayment,
		Order:         testOrder(),
		PaymentFailed: true,
		Reason:        "store unreachable",
	}); err != nil {
		t.Fatalf("failure Notify error: %v", err)
	}
	notif = models.Notification{}
	if err := db.Where("user_id = ?", 100).First(&notif).Error; err != nil {
		t.Fatalf("expected retailer failure notice: %v", err)
	}
}

func TestMarkReadOwnershipAndIdempotency(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	ids, err := svc.Notify(Event{
		Kind:   constants.NotificationEntityDelivery,
		Order:  testOrder(),
		Status: constants.OrderStatusDelivered,
	})
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	var notif models.Notification
	if err := db.First(&notif, ids[0]).Error; err != nil {
		t.Fatalf("load notification failed: %v", err)
	}

	if err := svc.MarkRead(notif.ID, 999); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}
	if err := svc.MarkRead(notif.ID, notif.UserID); err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}
	// Marking again is a no-op, not an error.
	if err := svc.MarkRead(notif.ID, notif.UserID); err != nil {
		t.Fatalf("repeat MarkRead error: %v", err)
	}
	if err := svc.MarkRead(404, notif.UserID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}

	unread, err := svc.CountUnread(notif.UserID)
	if err != nil {
		t.Fatalf("CountUnread error: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
}

func TestListForUserUnreadFilter(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	ids, err := svc.Notify(Event{
		Kind:   constants.NotificationEntityDelivery,
		Order:  testOrder(),
		Status: constants.OrderStatusDelivered,
	})
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if err := svc.MarkRead(ids[0], 100); err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}

	list, total, err := svc.ListForUser(repository.NotificationListFilter{UserID: 100, OnlyUnread: true})
	if err != nil {
		t.Fatalf("ListForUser error: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Fatalf("expected no unread, got %d rows", len(list))
	}
}
