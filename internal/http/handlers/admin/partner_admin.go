package admin

import (
	"errors"
	"strconv"

	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrphanPartners reports partner rows with no linked user account.
// These partners deliver orders but receive no notifications until linked.
func (h *Handler) ListOrphanPartners(c *gin.Context) {
	orphans, err := h.PartnerLinkService.FindOrphans()
	if err != nil {
		respondError(c, response.CodeInternal, "orphan partner report failed", err)
		return
	}

	response.Success(c, gin.H{
		"count":    len(orphans),
		"partners": orphans,
	})
}

// LinkPartnerByContact attaches an orphan partner to a delivery-partner
// account matched by email, falling back to phone.
func (h *Handler) LinkPartnerByContact(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || partnerID == 0 {
		respondError(c, response.CodeBadRequest, "invalid partner id", nil)
		return
	}

	partner, err := h.PartnerLinkService.LinkByContactMatch(uint(partnerID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "delivery partner not found", nil)
		case errors.Is(err, service.ErrLinkUnresolved):
			respondError(c, response.CodeNotFound, "no matching account found for this partner", nil)
		default:
			respondError(c, response.CodeInternal, "partner link failed", err)
		}
		return
	}

	response.Success(c, partner)
}
