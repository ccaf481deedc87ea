package admin

import (
	"errors"
	"strconv"

	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/queue"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ReconcileOrder repairs one order's status/event-log projection. With the
// queue enabled the repair runs on the worker; otherwise it runs inline.
func (h *Handler) ReconcileOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOrderReconcile(queue.OrderReconcilePayload{OrderID: uint(orderID)}); err != nil {
			respondError(c, response.CodeInternal, "reconcile enqueue failed", err)
			return
		}
		response.SuccessWithMsg(c, "reconcile queued", gin.H{"order_id": orderID, "queued": true})
		return
	}

	repaired, err := h.ReconcileService.ReconcileOrder(uint(orderID))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "reconcile failed", err)
		return
	}

	response.Success(c, gin.H{"order_id": orderID, "repaired": repaired})
}

// ReconcileAllOrders sweeps every non-terminal order and repairs drift
// between the status column and the event log.
func (h *Handler) ReconcileAllOrders(c *gin.Context) {
	repaired, err := h.ReconcileService.ReconcileAll()
	if err != nil {
		respondError(c, response.CodeInternal, "reconcile sweep failed", err)
		return
	}

	requestLog(c).Infow("reconcile_sweep_completed", "repaired", repaired)
	response.Success(c, gin.H{"repaired": repaired})
}
