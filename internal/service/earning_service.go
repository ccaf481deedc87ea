package service

import (
	"strings"
	"time"

	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarningService maintains the partner earnings ledger. Credits are derived
// facts: at most one per order, amount computed from the order total at
// credit time and never recomputed afterwards.
type EarningService struct {
	earningRepo repository.EarningRepository
	cfg         config.DeliveryConfig
}

// NewEarningService creates an earnings service.
func NewEarningService(earningRepo repository.EarningRepository, cfg config.DeliveryConfig) *EarningService {
	return &EarningService{
		earningRepo: earningRepo,
		cfg:         cfg,
	}
}

// ComputeForOrder returns the credit amount for an order total: a configured
// percentage with a per-delivery floor.
func (s *EarningService) ComputeForOrder(total models.Money) models.Money {
	rate := decimal.NewFromFloat(s.cfg.EarningRatePercent).Div(decimal.NewFromInt(100))
	amount := total.Decimal.Mul(rate).Round(2)
	floor := decimal.NewFromFloat(s.cfg.MinEarning).Round(2)
	if amount.LessThan(floor) {
		amount = floor
	}
	return models.NewMoneyFromDecimal(amount)
}

// CreditForDelivery records the earning for a delivered order. Idempotent:
// a second credit for the same order returns the existing row unchanged.
// Runs inside tx when one is given so the credit commits atomically with the
// delivery completion.
func (s *EarningService) CreditForDelivery(tx *gorm.DB, order *models.Order) (*models.DeliveryPartnerEarning, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID == 0 {
		return nil, ErrPartnerNotFound
	}

	repo := s.earningRepo.WithTx(tx)

	existing, err := repo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	orderID := order.ID
	earning := &models.DeliveryPartnerEarning{
		DeliveryPartnerID: *order.DeliveryPartnerID,
		OrderID:           &orderID,
		Amount:            s.ComputeForOrder(order.TotalAmount),
		Status:            constants.EarningStatusPending,
	}
	if err := repo.Create(earning); err != nil {
		// The unique index on order_id makes a concurrent credit lose
		// here; the row that won carries the same business fact.
		dup, readErr := repo.GetByOrderID(order.ID)
		if readErr == nil && dup != nil {
			return dup, nil
		}
		return nil, err
	}
	logger.Infow("earning_credited",
		"order_id", order.ID,
		"delivery_partner_id", earning.DeliveryPartnerID,
		"amount", earning.Amount.String(),
	)
	return earning, nil
}

// MarkPaid settles a batch of pending earnings under one payout reference.
// Returns the payout id used and how many rows actually moved; rows already
// paid or cancelled are skipped, so a retried payout is safe.
func (s *EarningService) MarkPaid(ids []uint, payoutID string) (string, int64, error) {
	if len(ids) == 0 {
		return payoutID, 0, nil
	}
	if strings.TrimSpace(payoutID) == "" {
		payoutID = uuid.NewString()
	}
	moved, err := s.earningRepo.MarkPaid(ids, payoutID, time.Now())
	if err != nil {
		return payoutID, 0, err
	}
	if moved < int64(len(ids)) {
		logger.Warnw("earning_payout_partial",
			"payout_id", payoutID,
			"requested", len(ids),
			"moved", moved,
		)
	}
	return payoutID, moved, nil
}

// List returns ledger rows matching the filter with the unpaginated total.
func (s *EarningService) List(filter repository.EarningListFilter) ([]models.DeliveryPartnerEarning, int64, error) {
	return s.earningRepo.List(filter)
}

// GetByOrderID fetches the credit for an order, ErrEarningNotFound when none
// exists.
func (s *EarningService) GetByOrderID(orderID uint) (*models.DeliveryPartnerEarning, error) {
	earning, err := s.earningRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if earning == nil {
		return nil, ErrEarningNotFound
	}
	return earning, nil
}

// TotalFor sums a partner's non-cancelled earnings over a dashboard period:
// "day", "week", "month" or "" / "all" for lifetime.
func (s *EarningService) TotalFor(partnerID uint, period string) (models.Money, error) {
	var from *time.Time
	now := time.Now()
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", "all":
		from = nil
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		from = &start
	case "week":
		start := now.AddDate(0, 0, -7)
		from = &start
	case "month":
		start := now.AddDate(0, -1, 0)
		from = &start
	default:
		from = nil
	}
	total, err := s.earningRepo.SumForPartner(partnerID, from, nil)
	if err != nil {
		return models.Money{}, err
	}
	return models.NewMoneyFromDecimal(total), nil
}
