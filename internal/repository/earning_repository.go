package repository

import (
	"errors"
	"time"

	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarningRepository is the earnings ledger access interface.
type EarningRepository interface {
	Create(earning *models.DeliveryPartnerEarning) error
	GetByID(id uint) (*models.DeliveryPartnerEarning, error)
	GetByOrderID(orderID uint) (*models.DeliveryPartnerEarning, error)
	List(filter EarningListFilter) ([]models.DeliveryPartnerEarning, int64, error)
	// MarkPaid flips pending rows to paid. Rows already paid or cancelled
	// are left untouched; the affected count tells the caller how many
	// actually moved.
	MarkPaid(ids []uint, payoutID string, paidAt time.Time) (int64, error)
	// SumForPartner totals non-cancelled amounts in the period, keyed by
	// earning row so an order can never be counted twice.
	SumForPartner(partnerID uint, from, to *time.Time) (decimal.Decimal, error)
	WithTx(tx *gorm.DB) *GormEarningRepository
}

// GormEarningRepository is the GORM implementation.
type GormEarningRepository struct {
	db *gorm.DB
}

// NewEarningRepository creates an earnings repository.
func NewEarningRepository(db *gorm.DB) *GormEarningRepository {
	return &GormEarningRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormEarningRepository) WithTx(tx *gorm.DB) *GormEarningRepository {
	if tx == nil {
		return r
	}
	return &GormEarningRepository{db: tx}
}

// Create inserts an earning row.
func (r *GormEarningRepository) Create(earning *models.DeliveryPartnerEarning) error {
	return r.db.Create(earning).Error
}

// GetByID fetches an earning, nil when absent.
func (r *GormEarningRepository) GetByID(id uint) (*models.DeliveryPartnerEarning, error) {
	var earning models.DeliveryPartnerEarning
	if err := r.db.First(&earning, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &earning, nil
}

// GetByOrderID fetches the earning credited for an order, nil when absent.
func (r *GormEarningRepository) GetByOrderID(orderID uint) (*models.DeliveryPartnerEarning, error) {
	var earning models.DeliveryPartnerEarning
	if err := r.db.Where("order_id = ?", orderID).First(&earning).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &earning, nil
}

// List returns earnings matching the filter plus the unpaginated total.
func (r *GormEarningRepository) List(filter EarningListFilter) ([]models.DeliveryPartnerEarning, int64, error) {
	query := r.db.Model(&models.DeliveryPartnerEarning{})

	if filter.DeliveryPartnerID != 0 {
		query = query.Where("delivery_partner_id = ?", filter.DeliveryPartnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var earnings []models.DeliveryPartnerEarning
	if err := query.Order("id desc").Find(&earnings).Error; err != nil {
		return nil, 0, err
	}
	return earnings, total, nil
}

// MarkPaid transitions pending rows to paid with the given payout reference.
func (r *GormEarningRepository) MarkPaid(ids []uint, payoutID string, paidAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.DeliveryPartnerEarning{}).
		Where("id IN ? AND status = ?", ids, constants.EarningStatusPending).
		Updates(map[string]interface{}{
			"status":    constants.EarningStatusPaid,
			"payout_id": payoutID,
			"paid_at":   paidAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SumForPartner totals non-cancelled earnings within the period.
func (r *GormEarningRepository) SumForPartner(partnerID uint, from, to *time.Time) (decimal.Decimal, error) {
	query := r.db.Model(&models.DeliveryPartnerEarning{}).
		Where("delivery_partner_id = ? AND status <> ?", partnerID, constants.EarningStatusCancelled)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var row struct {
		Total decimal.NullDecimal
	}
	if err := query.Select("COALESCE(SUM(amount), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}
