package repository

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository is the settlement record access interface.
type TransactionRepository interface {
	Create(txn *models.Transaction) error
	GetByOrderID(orderID uint) (*models.Transaction, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// GormTransactionRepository is the GORM implementation.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository.
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// Create inserts a settlement row.
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// GetByOrderID fetches the settlement for an order, nil when absent.
func (r *GormTransactionRepository) GetByOrderID(orderID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Where("order_id = ?", orderID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}
