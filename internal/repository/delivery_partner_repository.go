package repository

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/models"

	"gorm.io/gorm"
)

// DeliveryPartnerRepository is the partner data access interface.
type DeliveryPartnerRepository interface {
	Create(partner *models.DeliveryPartner) error
	GetByID(id uint) (*models.DeliveryPartner, error)
	GetByUserID(userID uint) (*models.DeliveryPartner, error)
	FindOrphans() ([]models.DeliveryPartner, error)
	ListActive() ([]models.DeliveryPartner, error)
	// ClaimUserID attaches a user to a partner row only while the row is
	// still unlinked. Returns false when another writer linked it first.
	ClaimUserID(partnerID, userID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormDeliveryPartnerRepository
}

// GormDeliveryPartnerRepository is the GORM implementation.
type GormDeliveryPartnerRepository struct {
	db *gorm.DB
}

// NewDeliveryPartnerRepository creates a partner repository.
func NewDeliveryPartnerRepository(db *gorm.DB) *GormDeliveryPartnerRepository {
	return &GormDeliveryPartnerRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormDeliveryPartnerRepository) WithTx(tx *gorm.DB) *GormDeliveryPartnerRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryPartnerRepository{db: tx}
}

// Create inserts a partner row. The caller may set an explicit ID so that a
// partner created from a registered account shares the account's id.
func (r *GormDeliveryPartnerRepository) Create(partner *models.DeliveryPartner) error {
	return r.db.Create(partner).Error
}

// GetByID fetches a partner, nil when absent.
func (r *GormDeliveryPartnerRepository) GetByID(id uint) (*models.DeliveryPartner, error) {
	var partner models.DeliveryPartner
	if err := r.db.First(&partner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByUserID fetches the partner linked to a user, nil when absent.
func (r *GormDeliveryPartnerRepository) GetByUserID(userID uint) (*models.DeliveryPartner, error) {
	var partner models.DeliveryPartner
	if err := r.db.Where("user_id = ?", userID).Order("id asc").First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// FindOrphans returns all partner rows with no linked user account.
func (r *GormDeliveryPartnerRepository) FindOrphans() ([]models.DeliveryPartner, error) {
	var partners []models.DeliveryPartner
	if err := r.db.Where("user_id IS NULL OR user_id = 0").Order("id asc").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

// ListActive returns partners available for assignment.
func (r *GormDeliveryPartnerRepository) ListActive() ([]models.DeliveryPartner, error) {
	var partners []models.DeliveryPartner
	if err := r.db.Where("is_active = ?", true).Order("name asc").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

// ClaimUserID links a user to an orphan row, conditioned on it still being
// an orphan.
func (r *GormDeliveryPartnerRepository) ClaimUserID(partnerID, userID uint) (bool, error) {
	result := r.db.Model(&models.DeliveryPartner{}).
		Where("id = ? AND user_id IS NULL", partnerID).
		Update("user_id", userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
