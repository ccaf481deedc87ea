package main

import (
	"log"
	"time"

	"github.com/retailsetu/delivery-engine/internal/authz"
	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo dataset: one account per role, a linked partner profile, an
// orphan partner row waiting for contact-match linking, and a handful of
// orders spread across the lifecycle.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	users := []models.User{
		{
			Role:         constants.RoleRetailer,
			BusinessName: "Sharma Kirana Store",
			Email:        "retailer@demo.local",
			Phone:        "9800000001",
			Address:      "14 Market Road, Pune",
		},
		{
			Role:         constants.RoleWholesaler,
			BusinessName: "Deccan Wholesale Traders",
			Email:        "wholesaler@demo.local",
			Phone:        "9800000002",
			Address:      "Plot 7, APMC Yard, Pune",
		},
		{
			Role:         constants.RoleDeliveryPartner,
			BusinessName: "Ravi Deliveries",
			Email:        "partner@demo.local",
			Phone:        "9800000003",
		},
		{
			Role:         constants.RoleDeliveryPartner,
			BusinessName: "Meena Logistics",
			Email:        "orphan-partner@demo.local",
			Phone:        "9800000004",
		},
		{
			Role:         constants.RoleAdmin,
			BusinessName: "Platform Operations",
			Email:        "admin@demo.local",
			Phone:        "9800000005",
		},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("failed to hash demo password: %v", err)
	}

	userIDs := map[string]uint{}
	for _, u := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			userIDs[u.Email] = existing.ID
			stdLog.Printf("user already exists: %s", u.Email)
			continue
		}
		u.PasswordHash = string(hash)
		u.IsActive = true
		if err := models.DB.Create(&u).Error; err != nil {
			stdLog.Fatalf("failed to create user %s: %v", u.Email, err)
		}
		userIDs[u.Email] = u.ID
		stdLog.Printf("created user: %s (id=%d, role=%s)", u.Email, u.ID, u.Role)
	}

	// Bind every demo account to its role grouping so the route matrix
	// applies without going through the admin role endpoints first.
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("failed to seed builtin roles: %v", err)
	}
	for _, u := range users {
		if err := authzService.SetUserRoles(userIDs[u.Email], []string{u.Role}); err != nil {
			stdLog.Fatalf("failed to assign role for %s: %v", u.Email, err)
		}
		stdLog.Printf("assigned role %s to %s", u.Role, u.Email)
	}

	// Linked partner profile for the registered partner account.
	partnerUserID := userIDs["partner@demo.local"]
	linkedPartnerID := seedPartner(stdLog, models.DeliveryPartner{
		ID:            partnerUserID,
		UserID:        &partnerUserID,
		Name:          "Ravi Deliveries",
		Email:         "partner@demo.local",
		Phone:         "9800000003",
		VehicleType:   "bike",
		VehicleNumber: "MH12-AB-1234",
		IsActive:      true,
	})

	// Orphan partner row: same email as the second partner account, so the
	// admin contact-match link can resolve it.
	seedPartner(stdLog, models.DeliveryPartner{
		Name:        "Meena Logistics",
		Email:       "orphan-partner@demo.local",
		Phone:       "9800000004",
		VehicleType: "van",
		IsActive:    true,
	})

	retailerID := userIDs["retailer@demo.local"]
	wholesalerID := userIDs["wholesaler@demo.local"]
	deliveredAt := time.Now().Add(-24 * time.Hour)

	orders := []models.Order{
		{
			RetailerID:    retailerID,
			WholesalerID:  wholesalerID,
			Status:        constants.OrderStatusPlaced,
			PaymentMethod: constants.PaymentMethodCOD,
			PaymentStatus: constants.PaymentStatusPending,
			TotalAmount:   models.NewMoneyFromFloat(1450.00),
		},
		{
			RetailerID:    retailerID,
			WholesalerID:  wholesalerID,
			Status:        constants.OrderStatusConfirmed,
			PaymentMethod: constants.PaymentMethodUPI,
			PaymentStatus: constants.PaymentStatusPaid,
			TotalAmount:   models.NewMoneyFromFloat(820.50),
		},
		{
			RetailerID:        retailerID,
			WholesalerID:      wholesalerID,
			Status:            constants.OrderStatusDispatched,
			PaymentMethod:     constants.PaymentMethodCOD,
			PaymentStatus:     constants.PaymentStatusPending,
			TotalAmount:       models.NewMoneyFromFloat(2300.00),
			DeliveryPartnerID: &linkedPartnerID,
		},
		{
			RetailerID:        retailerID,
			WholesalerID:      wholesalerID,
			Status:            constants.OrderStatusDelivered,
			PaymentMethod:     constants.PaymentMethodCOD,
			PaymentStatus:     constants.PaymentStatusPending,
			TotalAmount:       models.NewMoneyFromFloat(560.00),
			DeliveryPartnerID: &linkedPartnerID,
			DeliveredAt:       &deliveredAt,
		},
	}

	var orderCount int64
	models.DB.Model(&models.Order{}).Count(&orderCount)
	if orderCount > 0 {
		stdLog.Printf("orders already seeded (%d rows), skipping", orderCount)
	} else {
		for i := range orders {
			orders[i].OrderNo = uuid.NewString()
			if err := models.DB.Create(&orders[i]).Error; err != nil {
				stdLog.Fatalf("failed to create order: %v", err)
			}
			stdLog.Printf("created order %s (%s)", orders[i].OrderNo, orders[i].Status)
		}
	}

	// Print a demo session token per account for exercising the API.
	ttl := time.Duration(cfg.JWT.ExpireHours) * time.Hour
	for _, u := range users {
		var row models.User
		if err := models.DB.Where("email = ?", u.Email).First(&row).Error; err != nil {
			continue
		}
		token, err := service.IssueSessionToken(cfg.JWT.SecretKey, &row, ttl)
		if err != nil {
			stdLog.Printf("failed to issue token for %s: %v", u.Email, err)
			continue
		}
		stdLog.Printf("token %s: %s", u.Email, token)
	}

	stdLog.Printf("seed complete")
}

func seedPartner(stdLog *log.Logger, partner models.DeliveryPartner) uint {
	var existing models.DeliveryPartner
	if err := models.DB.Where("email = ?", partner.Email).First(&existing).Error; err == nil {
		stdLog.Printf("partner already exists: %s", partner.Email)
		return existing.ID
	}
	if err := models.DB.Create(&partner).Error; err != nil {
		stdLog.Printf("failed to create partner %s: %v", partner.Email, err)
		return 0
	}
	stdLog.Printf("created partner: %s (id=%d)", partner.Name, partner.ID)
	return partner.ID
}
