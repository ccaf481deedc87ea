package repository

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/models"

	"gorm.io/gorm"
)

// UserRepository reads the profile store.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	FindByRoleAndEmail(role, email string) (*models.User, error)
	FindByRoleAndPhone(role, phone string) (*models.User, error)
}

// GormUserRepository is the GORM implementation.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a profile row.
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID fetches a profile, nil when absent.
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByRoleAndEmail matches a profile by role and exact email.
func (r *GormUserRepository) FindByRoleAndEmail(role, email string) (*models.User, error) {
	if email == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("role = ? AND email = ?", role, email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByRoleAndPhone matches a profile by role and exact phone.
func (r *GormUserRepository) FindByRoleAndPhone(role, phone string) (*models.User, error) {
	if phone == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("role = ? AND phone = ?", role, phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
