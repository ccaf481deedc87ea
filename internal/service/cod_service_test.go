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

func setupCODServiceTest(t *testing.T) (*CODService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cod_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.DeliveryProof{},
		&models.Notification{},
		&models.Transaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), queueClient)
	cfg := config.DeliveryConfig{CODFeePercent: 2, CashTolerance: 0.01}
	return NewCODService(
		db,
		repository.NewOrderRepository(db),
		repository.NewTransactionRepository(db),
		notifySvc,
		cfg,
	), db
}

func seedCODOrder(t *testing.T, db *gorm.DB, id uint, status string, total float64) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            id,
		OrderNo:       fmt.Sprintf("ORD-%d", id),
		RetailerID:    100,
		WholesalerID:  200,
		Status:        status,
		PaymentMethod: constants.PaymentMethodCOD,
		PaymentStatus: constants.PaymentStatusPending,
		TotalAmount:   models.NewMoneyFromFloat(total),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func codWholesaler() Actor {
	return Actor{UserID: 200, Role: constants.RoleWholesaler}
}

func TestConfirmCashReceivedHappyPath(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusDelivered, 500)

	txn, err := svc.ConfirmCashReceived(CashInput{
		OrderID:         1,
		CollectedAmount: models.NewMoneyFromFloat(500),
		Actor:           codWholesaler(),
	})
	if err != nil {
		t.Fatalf("ConfirmCashReceived error: %v", err)
	}
	// 2% of 500.
	if txn.TransactionFee.String() != "10.00" {
		t.Fatalf("expected fee 10.00, got %s", txn.TransactionFee.String())
	}
	if txn.Status != constants.TransactionStatusCompleted {
		t.Fatalf("expected completed txn, got %s", txn.Status)
	}
	if txn.Metadata != nil {
		t.Fatalf("expected no discrepancy metadata, got %+v", txn.Metadata)
	}

	var order models.Order
	if err := db.First(&order, 1).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if order.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", order.PaymentStatus)
	}

	// Wholesaler got the receipt notification.
	var notif models.Notification
	if err := db.Where("user_id = ? AND type = ?", 200, constants.NotificationTypePayment).First(&notif).Error; err != nil {
		t.Fatalf("expected payment notification: %v", err)
	}
}

func TestConfirmCashReceivedPreconditions(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusInTransit, 500)

	collected := models.NewMoneyFromFloat(500)

	if _, err := svc.ConfirmCashReceived(CashInput{OrderID: 404, CollectedAmount: collected, Actor: codWholesaler()}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.ConfirmCashReceived(CashInput{OrderID: 1, CollectedAmount: collected, Actor: Actor{UserID: 999, Role: constants.RoleWholesaler}}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := svc.ConfirmCashReceived(CashInput{OrderID: 1, CollectedAmount: collected, Actor: codWholesaler()}); !errors.Is(err, ErrNotDelivered) {
		t.Fatalf("expected ErrNotDelivered, got %v", err)
	}

	upi := seedCODOrder(t, db, 2, constants.OrderStatusDelivered, 500)
	if err := db.Model(upi).Update("payment_method", constants.PaymentMethodUPI).Error; err != nil {
		t.Fatalf("set upi failed: %v", err)
	}
	if _, err := svc.ConfirmCashReceived(CashInput{OrderID: 2, CollectedAmount: collected, Actor: codWholesaler()}); !errors.Is(err, ErrWrongPaymentMethod) {
		t.Fatalf("expected ErrWrongPaymentMethod, got %v", err)
	}
}

func TestConfirmCashReceivedAlreadyPaid(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusDelivered, 500)

	if _, err := svc.ConfirmCashReceived(CashInput{OrderID: 1, CollectedAmount: models.NewMoneyFromFloat(500), Actor: codWholesaler()}); err != nil {
		t.Fatalf("first settle failed: %v", err)
	}
	if _, err := svc.ConfirmCashReceived(CashInput{OrderID: 1, CollectedAmount: models.NewMoneyFromFloat(500), Actor: codWholesaler()}); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Transaction{}).Where("order_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count txns failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one transaction, got %d", count)
	}
}

func TestConfirmCashReceivedConcurrentDuplicateReturnsWinner(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusDelivered, 500)

	// A racing settle committed its row after this caller's status read:
	// the order still looks pending, but the winner's transaction exists.
	winner := &models.Transaction{
		Reference:      "winner-ref",
		OrderID:        1,
		Amount:         models.NewMoneyFromFloat(500),
		PaymentMethod:  constants.PaymentMethodCOD,
		Status:         constants.TransactionStatusCompleted,
		TransactionFee: models.NewMoneyFromFloat(10),
	}
	if err := db.Create(winner).Error; err != nil {
		t.Fatalf("seed winner txn failed: %v", err)
	}

	txn, err := svc.ConfirmCashReceived(CashInput{OrderID: 1, CollectedAmount: models.NewMoneyFromFloat(500), Actor: codWholesaler()})
	if err != nil {
		t.Fatalf("losing settle should resolve as success, got %v", err)
	}
	if txn == nil || txn.Reference != "winner-ref" {
		t.Fatalf("expected winner transaction back, got %+v", txn)
	}

	var count int64
	if err := db.Model(&models.Transaction{}).Where("order_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count txns failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one transaction, got %d", count)
	}
}

func TestConfirmCashReceivedMismatchNeedsOverride(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusDelivered, 500)

	if _, err := svc.ConfirmCashReceived(CashInput{
		OrderID:         1,
		CollectedAmount: models.NewMoneyFromFloat(480),
		Actor:           codWholesaler(),
	}); !errors.Is(err, ErrCashMismatch) {
		t.Fatalf("expected ErrCashMismatch, got %v", err)
	}

	var order models.Order
	if err := db.First(&order, 1).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("expected pending after refused mismatch, got %s", order.PaymentStatus)
	}
}

func TestConfirmCashReceivedOverrideFlagsDiscrepancy(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusDelivered, 500)

	txn, err := svc.ConfirmCashReceived(CashInput{
		OrderID:          1,
		CollectedAmount:  models.NewMoneyFromFloat(480),
		Actor:            codWholesaler(),
		OverrideMismatch: true,
	})
	if err != nil {
		t.Fatalf("ConfirmCashReceived error: %v", err)
	}
	if txn.Amount.String() != "480.00" {
		t.Fatalf("expected actual collected amount recorded, got %s", txn.Amount.String())
	}
	if txn.Metadata == nil || txn.Metadata["discrepancy"] != true {
		t.Fatalf("expected discrepancy flag, got %+v", txn.Metadata)
	}
	if txn.Metadata["difference"] != "-20.00" {
		t.Fatalf("expected difference -20.00, got %v", txn.Metadata["difference"])
	}
	// Fee follows the collected amount, not the order total.
	if txn.TransactionFee.String() != "9.60" {
		t.Fatalf("expected fee 9.60, got %s", txn.TransactionFee.String())
	}
}

func TestConfirmCashReceivedToleratesRounding(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusDelivered, 500)

	txn, err := svc.ConfirmCashReceived(CashInput{
		OrderID:         1,
		CollectedAmount: models.NewMoneyFromFloat(500.01),
		Actor:           codWholesaler(),
	})
	if err != nil {
		t.Fatalf("ConfirmCashReceived error: %v", err)
	}
	if txn.Metadata != nil {
		t.Fatalf("expected no discrepancy inside tolerance, got %+v", txn.Metadata)
	}
}

func TestConfirmCashReceivedAdminCanSettle(t *testing.T) {
	svc, db := setupCODServiceTest(t)
	seedCODOrder(t, db, 1, constants.OrderStatusDelivered, 500)

	if _, err := svc.ConfirmCashReceived(CashInput{
		OrderID:         1,
		CollectedAmount: models.NewMoneyFromFloat(500),
		Actor:           Actor{UserID: 1, Role: constants.RoleAdmin},
	}); err != nil {
		t.Fatalf("admin settle failed: %v", err)
	}
}
