package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/provider"
	"github.com/retailsetu/delivery-engine/internal/queue"
	"github.com/retailsetu/delivery-engine/internal/repository"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const (
	testRetailerID   = uint(100)
	testWholesalerID = uint(200)
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupOrderHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:order_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.Transaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	deliveryCfg := config.DeliveryConfig{EarningRatePercent: 5, MinEarning: 20, CODFeePercent: 2, CashTolerance: 0.01}

	c := &provider.Container{
		Config:           &config.Config{Delivery: deliveryCfg},
		QueueClient:      queueClient,
		UserRepo:         repository.NewUserRepository(db),
		OrderRepo:        repository.NewOrderRepository(db),
		PartnerRepo:      repository.NewDeliveryPartnerRepository(db),
		EventRepo:        repository.NewDeliveryEventRepository(db),
		ProofRepo:        repository.NewDeliveryProofRepository(db),
		EarningRepo:      repository.NewEarningRepository(db),
		NotificationRepo: repository.NewNotificationRepository(db),
		TransactionRepo:  repository.NewTransactionRepository(db),
	}
	c.EarningService = service.NewEarningService(c.EarningRepo, deliveryCfg)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, queueClient)
	c.DeliveryService = service.NewDeliveryService(db, c.OrderRepo, c.EventRepo, c.ProofRepo, c.PartnerRepo, c.EarningService, c.NotificationService)
	c.CODService = service.NewCODService(db, c.OrderRepo, c.TransactionRepo, c.NotificationService, deliveryCfg)

	h := New(c)
	r := gin.New()
	// Stand-in for the session middleware: identity comes from headers.
	r.Use(func(ctx *gin.Context) {
		if raw := ctx.GetHeader("X-Test-User"); raw != "" {
			var uid uint
			fmt.Sscanf(raw, "%d", &uid)
			ctx.Set("user_id", uid)
			ctx.Set("user_role", ctx.GetHeader("X-Test-Role"))
		}
		ctx.Next()
	})
	r.POST("/orders/:id/transition", h.TransitionOrder)
	r.GET("/orders/:id/events", h.ListOrderEvents)
	r.GET("/orders/:id", h.GetOrder)
	return r, db
}

func seedOrder(t *testing.T, db *gorm.DB, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       fmt.Sprintf("ORD-%d", time.Now().UnixNano()),
		RetailerID:    testRetailerID,
		WholesalerID:  testWholesalerID,
		Status:        status,
		PaymentMethod: constants.PaymentMethodCOD,
		PaymentStatus: constants.PaymentStatusPending,
		TotalAmount:   models.NewMoneyFromFloat(500),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func doJSON(r *gin.Engine, method, path, body string, userID uint, role string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	req.Header.Set("X-Test-Role", role)
	r.ServeHTTP(w, req)
	return w
}

func TestTransitionOrderConfirm(t *testing.T) {
	r, db := setupOrderHandlerTest(t)
	order := seedOrder(t, db, constants.OrderStatusPlaced)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/orders/%d/transition", order.ID), `{"status":"confirmed"}`, testWholesalerID, constants.RoleWholesaler)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}

	var reread models.Order
	if err := db.First(&reread, order.ID).Error; err != nil {
		t.Fatalf("reread order failed: %v", err)
	}
	if reread.Status != constants.OrderStatusConfirmed {
		t.Fatalf("order status want confirmed got %s", reread.Status)
	}
}

func TestTransitionOrderForbiddenForStranger(t *testing.T) {
	r, db := setupOrderHandlerTest(t)
	order := seedOrder(t, db, constants.OrderStatusPlaced)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/orders/%d/transition", order.ID), `{"status":"confirmed"}`, uint(999), constants.RoleWholesaler)
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("status_code want 403 got %d", resp.StatusCode)
	}
}

func TestTransitionOrderInvalidLeapConflicts(t *testing.T) {
	r, db := setupOrderHandlerTest(t)
	order := seedOrder(t, db, constants.OrderStatusPlaced)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/orders/%d/transition", order.ID), `{"status":"dispatched"}`, testWholesalerID, constants.RoleWholesaler)
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 409 && resp.StatusCode != 404 {
		t.Fatalf("status_code want 409 (or 404 for missing partner) got %d", resp.StatusCode)
	}
}

func TestTransitionOrderBadBody(t *testing.T) {
	r, db := setupOrderHandlerTest(t)
	order := seedOrder(t, db, constants.OrderStatusPlaced)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/orders/%d/transition", order.ID), `{"status":`, testWholesalerID, constants.RoleWholesaler)
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
}

func TestGetOrderScopedToParticipants(t *testing.T) {
	r, db := setupOrderHandlerTest(t)
	order := seedOrder(t, db, constants.OrderStatusPlaced)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), "", testRetailerID, constants.RoleRetailer)
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("retailer should see own order, got status_code %d", resp.StatusCode)
	}

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), "", uint(999), constants.RoleRetailer)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("stranger should be refused, got status_code %d", resp.StatusCode)
	}
}

func TestListOrderEventsAfterTransitions(t *testing.T) {
	r, db := setupOrderHandlerTest(t)
	order := seedOrder(t, db, constants.OrderStatusPlaced)

	doJSON(r, http.MethodPost, fmt.Sprintf("/orders/%d/transition", order.ID), `{"status":"confirmed"}`, testWholesalerID, constants.RoleWholesaler)

	uid := uint(300)
	if err := db.Create(&models.DeliveryPartner{ID: 300, UserID: &uid, Name: "Events Partner"}).Error; err != nil {
		t.Fatalf("seed partner failed: %v", err)
	}
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/orders/%d/transition", order.ID), `{"status":"dispatched","delivery_partner_id":300}`, testWholesalerID, constants.RoleWholesaler)
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("dispatch failed: status_code %d (%s)", resp.StatusCode, resp.Msg)
	}

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/orders/%d/events", order.ID), "", testRetailerID, constants.RoleRetailer)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("events fetch failed: status_code %d", resp.StatusCode)
	}
	var events []models.DeliveryStatusUpdate
	if err := json.Unmarshal(resp.Data, &events); err != nil {
		t.Fatalf("unmarshal events failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events want 1 (assigned) got %d", len(events))
	}
	if events[0].Status != constants.DeliveryEventAssigned {
		t.Fatalf("event status want assigned got %s", events[0].Status)
	}
}
