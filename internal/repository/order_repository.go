package repository

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/models"

	"gorm.io/gorm"
)

// OrderRepository is the order data access interface.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	// UpdateStatusIf advances the status only when the row still holds the
	// expected prior status. Returns false when the guard did not match,
	// which is how a losing racer is detected.
	UpdateStatusIf(id uint, expected, target string, updates map[string]interface{}) (bool, error)
	// SettlePaymentIf flips payment_status only from the expected value.
	SettlePaymentIf(id uint, expected, target string, updates map[string]interface{}) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository is the GORM implementation.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create inserts an order row.
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID fetches an order, nil when absent.
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Proof").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders matching the filter plus the unpaginated total.
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.RetailerID != 0 {
		query = query.Where("retailer_id = ?", filter.RetailerID)
	}
	if filter.WholesalerID != 0 {
		query = query.Where("wholesaler_id = ?", filter.WholesalerID)
	}
	if filter.DeliveryPartnerID != 0 {
		query = query.Where("delivery_partner_id = ?", filter.DeliveryPartnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatusIf performs the optimistic conditioned status write.
func (r *GormOrderRepository) UpdateStatusIf(id uint, expected, target string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = target
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SettlePaymentIf performs the conditioned payment-status write.
func (r *GormOrderRepository) SettlePaymentIf(id uint, expected, target string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["payment_status"] = target
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
