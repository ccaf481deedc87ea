package router

import (
	"fmt"
	"strings"

	"github.com/retailsetu/delivery-engine/internal/config"
	adminhandlers "github.com/retailsetu/delivery-engine/internal/http/handlers/admin"
	publichandlers "github.com/retailsetu/delivery-engine/internal/http/handlers/public"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all middleware and routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rs"
	}
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:write", redisPrefix),
		WindowSeconds: cfg.Security.RateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RateLimit.MaxAttempts,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		authed := apiV1.Group("")
		authed.Use(SessionAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), RBACMiddleware(c.AuthzService))
		{
			// Order lifecycle
			authed.GET("/orders", publicHandler.ListOrders)
			authed.GET("/orders/:id", publicHandler.GetOrder)
			authed.POST("/orders/:id/transition", RateLimitMiddleware(writeRule, KeyByUser), publicHandler.TransitionOrder)
			authed.POST("/orders/:id/assign", RateLimitMiddleware(writeRule, KeyByUser), publicHandler.AssignPartner)
			authed.GET("/orders/:id/events", publicHandler.ListOrderEvents)
			authed.GET("/orders/:id/proof", publicHandler.GetOrderProof)

			// COD settlement
			authed.POST("/orders/:id/confirm-cash", RateLimitMiddleware(writeRule, KeyByUser), publicHandler.ConfirmCashReceived)
			authed.GET("/orders/:id/transaction", publicHandler.GetOrderTransaction)

			// Delivery partners
			authed.GET("/partners", publicHandler.ListPartners)
			authed.GET("/partners/me", publicHandler.GetMyPartnerProfile)

			// Earnings
			authed.GET("/earnings", publicHandler.ListMyEarnings)
			authed.GET("/earnings/total", publicHandler.GetMyEarningsTotal)

			// Notifications
			authed.GET("/notifications", publicHandler.ListNotifications)
			authed.GET("/notifications/unread-count", publicHandler.GetUnreadCount)
			authed.POST("/notifications/:id/read", publicHandler.MarkNotificationRead)
		}

		admin := apiV1.Group("/admin")
		admin.Use(SessionAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), RBACMiddleware(c.AuthzService))
		{
			admin.GET("/partners/orphans", adminHandler.ListOrphanPartners)
			admin.POST("/partners/:id/link", adminHandler.LinkPartnerByContact)

			admin.GET("/earnings", adminHandler.AdminListEarnings)
			admin.POST("/earnings/mark-paid", adminHandler.MarkEarningsPaid)

			admin.POST("/orders/:id/reconcile", adminHandler.ReconcileOrder)
			admin.POST("/reconcile", adminHandler.ReconcileAllOrders)

			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/authz/users/:id/roles", adminHandler.GetAuthzUserRoles)
			admin.PUT("/authz/users/:id/roles", adminHandler.SetAuthzUserRoles)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
