package admin

import (
	"strconv"
	"strings"

	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"github.com/gin-gonic/gin"
)

// MarkEarningsPaidRequest settles a batch of pending earnings under one
// payout reference.
type MarkEarningsPaidRequest struct {
	EarningIDs []uint `json:"earning_ids" binding:"required"`
	PayoutID   string `json:"payout_id"`
}

// AdminListEarnings returns earnings across partners.
func (h *Handler) AdminListEarnings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.EarningListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if partnerID, err := strconv.ParseUint(c.Query("delivery_partner_id"), 10, 64); err == nil && partnerID > 0 {
		filter.DeliveryPartnerID = uint(partnerID)
	}

	earnings, total, err := h.EarningService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "earning listing failed", err)
		return
	}

	response.SuccessWithPage(c, earnings, response.BuildPagination(page, pageSize, total))
}

// MarkEarningsPaid moves pending earnings to paid. Rows already paid or
// cancelled are skipped, not failed.
func (h *Handler) MarkEarningsPaid(c *gin.Context) {
	var req MarkEarningsPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if len(req.EarningIDs) == 0 {
		respondError(c, response.CodeBadRequest, "earning_ids must not be empty", nil)
		return
	}

	payoutID, moved, err := h.EarningService.MarkPaid(req.EarningIDs, req.PayoutID)
	if err != nil {
		respondError(c, response.CodeInternal, "earning payout failed", err)
		return
	}

	response.Success(c, gin.H{
		"payout_id": payoutID,
		"requested": len(req.EarningIDs),
		"paid":      moved,
	})
}
