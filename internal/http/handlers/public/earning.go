package public

import (
	"strconv"
	"strings"

	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListMyEarnings returns the caller's earning ledger, newest first.
func (h *Handler) ListMyEarnings(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	partner, err := h.PartnerRepo.GetByUserID(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "earning listing failed", err)
		return
	}
	if partner == nil {
		respondError(c, response.CodeNotFound, "delivery partner not found", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	earnings, total, err := h.EarningService.List(repository.EarningListFilter{
		Page:              page,
		PageSize:          pageSize,
		DeliveryPartnerID: partner.ID,
		Status:            strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondWithMappedError(c, err, earningErrorRules, response.CodeInternal, "earning listing failed")
		return
	}

	response.SuccessWithPage(c, earnings, response.BuildPagination(page, pageSize, total))
}

// GetMyEarningsTotal returns the caller's earnings sum for a dashboard
// period (day, week, month, all).
func (h *Handler) GetMyEarningsTotal(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	partner, err := h.PartnerRepo.GetByUserID(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "earning total failed", err)
		return
	}
	if partner == nil {
		respondError(c, response.CodeNotFound, "delivery partner not found", nil)
		return
	}

	period := strings.TrimSpace(c.DefaultQuery("period", "all"))
	total, err := h.EarningService.TotalFor(partner.ID, period)
	if err != nil {
		respondWithMappedError(c, err, earningErrorRules, response.CodeInternal, "earning total failed")
		return
	}

	response.Success(c, gin.H{
		"delivery_partner_id": partner.ID,
		"period":              period,
		"total":               total,
	})
}
