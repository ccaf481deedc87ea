package provider

import (
	"github.com/retailsetu/delivery-engine/internal/authz"
	"github.com/retailsetu/delivery-engine/internal/cache"
	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/queue"
	"github.com/retailsetu/delivery-engine/internal/repository"
	"github.com/retailsetu/delivery-engine/internal/service"
)

// Container wires repositories and services once at startup and hands them
// to the HTTP layer and the worker.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	OrderRepo        repository.OrderRepository
	PartnerRepo      repository.DeliveryPartnerRepository
	EventRepo        repository.DeliveryEventRepository
	ProofRepo        repository.DeliveryProofRepository
	EarningRepo      repository.EarningRepository
	NotificationRepo repository.NotificationRepository
	TransactionRepo  repository.TransactionRepository

	// Services
	AuthzService        *authz.Service
	PartnerLinkService  *service.PartnerLinkService
	DeliveryService     *service.DeliveryService
	EarningService      *service.EarningService
	CODService          *service.CODService
	NotificationService *service.NotificationService
	ReconcileService    *service.ReconcileService
}

// NewContainer initializes the dependency container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	qc, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	} else {
		queueClient = qc
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PartnerRepo = repository.NewDeliveryPartnerRepository(db)
	c.EventRepo = repository.NewDeliveryEventRepository(db)
	c.ProofRepo = repository.NewDeliveryProofRepository(db)
	c.EarningRepo = repository.NewEarningRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
}

func (c *Container) initServices() {
	db := models.DB

	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
	} else {
		c.AuthzService = authzService
	}

	c.PartnerLinkService = service.NewPartnerLinkService(c.PartnerRepo, c.UserRepo)
	c.EarningService = service.NewEarningService(c.EarningRepo, c.Config.Delivery)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.DeliveryService = service.NewDeliveryService(
		db,
		c.OrderRepo,
		c.EventRepo,
		c.ProofRepo,
		c.PartnerRepo,
		c.EarningService,
		c.NotificationService,
	)
	c.CODService = service.NewCODService(
		db,
		c.OrderRepo,
		c.TransactionRepo,
		c.NotificationService,
		c.Config.Delivery,
	)
	c.ReconcileService = service.NewReconcileService(c.OrderRepo, c.EventRepo)
}
