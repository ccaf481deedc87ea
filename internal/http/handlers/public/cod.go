package public

import (
	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ConfirmCashRequest settles a cash-on-delivery order.
type ConfirmCashRequest struct {
	CollectedAmount  float64 `json:"collected_amount" binding:"required"`
	OverrideMismatch bool    `json:"override_mismatch"`
	Notes            string  `json:"notes"`
}

// ConfirmCashReceived records the cash handover for a delivered COD order
// and flips the payment to paid.
func (h *Handler) ConfirmCashReceived(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req ConfirmCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	txn, err := h.CODService.ConfirmCashReceived(service.CashInput{
		OrderID:          orderID,
		CollectedAmount:  models.NewMoneyFromFloat(req.CollectedAmount),
		Actor:            actor,
		OverrideMismatch: req.OverrideMismatch,
		Notes:            req.Notes,
	})
	if err != nil {
		respondCashError(c, err)
		return
	}

	requestLog(c).Infow("cod_settlement_recorded",
		"order_id", orderID,
		"transaction_id", txn.ID,
	)
	response.Success(c, txn)
}

// GetOrderTransaction returns the settlement record for an order.
func (h *Handler) GetOrderTransaction(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.DeliveryService.GetOrder(orderID)
	if err != nil {
		respondWithMappedError(c, err, orderCommonErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	if !h.canSeeOrder(actor, order) {
		respondError(c, response.CodeForbidden, "not allowed to act on this order", nil)
		return
	}

	txn, err := h.CODService.GetTransaction(orderID)
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "no settlement recorded for this order"},
		}, response.CodeInternal, "settlement fetch failed")
		return
	}

	response.Success(c, txn)
}
