package repository

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/models"

	"gorm.io/gorm"
)

// DeliveryProofRepository is the proof-of-delivery access interface.
type DeliveryProofRepository interface {
	Create(proof *models.DeliveryProof) error
	GetByOrderID(orderID uint) (*models.DeliveryProof, error)
	WithTx(tx *gorm.DB) *GormDeliveryProofRepository
}

// GormDeliveryProofRepository is the GORM implementation.
type GormDeliveryProofRepository struct {
	db *gorm.DB
}

// NewDeliveryProofRepository creates a proof repository.
func NewDeliveryProofRepository(db *gorm.DB) *GormDeliveryProofRepository {
	return &GormDeliveryProofRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormDeliveryProofRepository) WithTx(tx *gorm.DB) *GormDeliveryProofRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryProofRepository{db: tx}
}

// Create inserts a proof row.
func (r *GormDeliveryProofRepository) Create(proof *models.DeliveryProof) error {
	return r.db.Create(proof).Error
}

// GetByOrderID fetches the proof for an order, nil when absent.
func (r *GormDeliveryProofRepository) GetByOrderID(orderID uint) (*models.DeliveryProof, error) {
	var proof models.DeliveryProof
	if err := r.db.Where("order_id = ?", orderID).First(&proof).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &proof, nil
}
