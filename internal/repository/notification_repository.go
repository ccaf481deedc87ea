package repository

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository is the notification inbox access interface.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	ListForUser(filter NotificationListFilter) ([]models.Notification, int64, error)
	CountUnread(userID uint) (int64, error)
	// MarkRead flips is_read for the owner only. Returns false when the
	// row does not belong to the user or is already read.
	MarkRead(id, userID uint) (bool, error)
}

// GormNotificationRepository is the GORM implementation.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification row.
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByID fetches a notification, nil when absent.
func (r *GormNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// ListForUser returns a user's inbox, newest first.
func (r *GormNotificationRepository) ListForUser(filter NotificationListFilter) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", filter.UserID)
	if filter.OnlyUnread {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var notifications []models.Notification
	if err := query.Order("id desc").Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread returns the user's unread count.
func (r *GormNotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips is_read, scoped to the owning user.
func (r *GormNotificationRepository) MarkRead(id, userID uint) (bool, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
