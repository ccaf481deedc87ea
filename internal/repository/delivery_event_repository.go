package repository

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/models"

	"gorm.io/gorm"
)

// DeliveryEventRepository is the append-only event log access interface.
type DeliveryEventRepository interface {
	Append(update *models.DeliveryStatusUpdate) error
	LatestForOrder(orderID uint) (*models.DeliveryStatusUpdate, error)
	ListForOrder(orderID uint) ([]models.DeliveryStatusUpdate, error)
	WithTx(tx *gorm.DB) *GormDeliveryEventRepository
}

// GormDeliveryEventRepository is the GORM implementation.
type GormDeliveryEventRepository struct {
	db *gorm.DB
}

// NewDeliveryEventRepository creates an event log repository.
func NewDeliveryEventRepository(db *gorm.DB) *GormDeliveryEventRepository {
	return &GormDeliveryEventRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormDeliveryEventRepository) WithTx(tx *gorm.DB) *GormDeliveryEventRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryEventRepository{db: tx}
}

// Append inserts one event log row.
func (r *GormDeliveryEventRepository) Append(update *models.DeliveryStatusUpdate) error {
	return r.db.Create(update).Error
}

// LatestForOrder returns the newest event for an order, nil when the log is
// empty.
func (r *GormDeliveryEventRepository) LatestForOrder(orderID uint) (*models.DeliveryStatusUpdate, error) {
	var update models.DeliveryStatusUpdate
	if err := r.db.Where("order_id = ?", orderID).
		Order("id desc").
		First(&update).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &update, nil
}

// ListForOrder returns the full event history ascending by creation time.
func (r *GormDeliveryEventRepository) ListForOrder(orderID uint) ([]models.DeliveryStatusUpdate, error) {
	var updates []models.DeliveryStatusUpdate
	if err := r.db.Where("order_id = ?", orderID).
		Order("id asc").
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}
