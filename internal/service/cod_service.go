package service

import (
	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashInput is one cash-collection confirmation.
type CashInput struct {
	OrderID         uint
	CollectedAmount models.Money
	Actor           Actor
	// OverrideMismatch accepts a collected amount that differs from the
	// order total beyond tolerance. The discrepancy is still recorded.
	OverrideMismatch bool
	Notes            string
}

// CODService reconciles cash-on-delivery payments: verifies the collected
// cash against the order total, flips payment status, and writes exactly one
// settlement row per order.
type CODService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	txnRepo   repository.TransactionRepository
	notifySvc *NotificationService
	cfg       config.DeliveryConfig
}

// NewCODService creates a reconciliation service.
func NewCODService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	txnRepo repository.TransactionRepository,
	notifySvc *NotificationService,
	cfg config.DeliveryConfig,
) *CODService {
	return &CODService{
		db:        db,
		orderRepo: orderRepo,
		txnRepo:   txnRepo,
		notifySvc: notifySvc,
		cfg:       cfg,
	}
}

// ConfirmCashReceived settles a COD order. Preconditions: the actor owns the
// order (or is an admin), the order is delivered, paid by cash, and not yet
// settled. A collected amount off by more than the tolerance needs an
// explicit override and gets a discrepancy flag in the settlement metadata.
// At most one Transaction row ever exists per order: a concurrent duplicate
// settle loses the conditioned payment write and returns the winner's row.
func (s *CODService) ConfirmCashReceived(input CashInput) (*models.Transaction, error) {
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if !input.Actor.IsAdmin() && input.Actor.UserID != order.WholesalerID {
		return nil, ErrNotAuthorized
	}
	if order.PaymentMethod != constants.PaymentMethodCOD {
		return nil, ErrWrongPaymentMethod
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if order.Status != constants.OrderStatusDelivered {
		return nil, ErrNotDelivered
	}

	collected := input.CollectedAmount.Decimal
	expected := order.TotalAmount.Decimal
	difference := collected.Sub(expected)
	tolerance := decimal.NewFromFloat(s.cfg.CashTolerance)
	mismatch := difference.Abs().GreaterThan(tolerance)
	if mismatch && !input.OverrideMismatch {
		return nil, ErrCashMismatch
	}

	fee := collected.
		Mul(decimal.NewFromFloat(s.cfg.CODFeePercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	txn := &models.Transaction{
		Reference:      uuid.NewString(),
		OrderID:        order.ID,
		Amount:         models.NewMoneyFromDecimal(collected),
		PaymentMethod:  constants.PaymentMethodCOD,
		Status:         constants.TransactionStatusCompleted,
		TransactionFee: models.NewMoneyFromDecimal(fee),
	}
	if mismatch {
		txn.Metadata = models.JSON{
			"discrepancy": true,
			"expected":    expected.StringFixed(2),
			"collected":   collected.StringFixed(2),
			"difference":  difference.StringFixed(2),
		}
	}
	if input.Notes != "" {
		if txn.Metadata == nil {
			txn.Metadata = models.JSON{}
		}
		txn.Metadata["notes"] = input.Notes
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, uerr := s.orderRepo.WithTx(tx).SettlePaymentIf(
			order.ID,
			constants.PaymentStatusPending,
			constants.PaymentStatusPaid,
			nil,
		)
		if uerr != nil {
			return uerr
		}
		if !ok {
			return ErrDuplicateWrite
		}
		return s.txnRepo.WithTx(tx).Create(txn)
	})
	if err != nil {
		// The duplicate path: another settle committed between the read
		// above and the conditioned write. Its row carries the business
		// fact; hand it back as the same success.
		winner, rerr := s.txnRepo.GetByOrderID(order.ID)
		if rerr == nil && winner != nil {
			return winner, nil
		}
		s.notifyPaymentFailure(order, err)
		return nil, err
	}

	if mismatch {
		logger.Warnw("cod_cash_discrepancy_recorded",
			"order_id", order.ID,
			"expected", expected.StringFixed(2),
			"collected", collected.StringFixed(2),
		)
	}
	logger.Infow("cod_settled",
		"order_id", order.ID,
		"amount", txn.Amount.String(),
		"fee", txn.TransactionFee.String(),
	)

	if _, nerr := s.notifySvc.Notify(Event{
		Kind:   constants.NotificationEntityPayment,
		Order:  order,
		Amount: txn.Amount,
	}); nerr != nil {
		logger.Warnw("payment_notification_failed",
			"order_id", order.ID,
			"error", nerr,
		)
	}
	return txn, nil
}

// GetTransaction fetches the settlement for an order.
func (s *CODService) GetTransaction(orderID uint) (*models.Transaction, error) {
	txn, err := s.txnRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrOrderNotFound
	}
	return txn, nil
}

func (s *CODService) notifyPaymentFailure(order *models.Order, cause error) {
	if _, err := s.notifySvc.Notify(Event{
		Kind:          constants.NotificationEntityPayment,
		Order:         order,
		PaymentFailed: true,
		Reason:        cause.Error(),
	}); err != nil {
		logger.Warnw("payment_failure_notification_failed",
			"order_id", order.ID,
			"error", err,
		)
	}
}
