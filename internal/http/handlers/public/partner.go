package public

import (
	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyPartnerProfile resolves the caller's delivery-partner row, creating
// it from the account profile on first use. Safe to call repeatedly.
func (h *Handler) GetMyPartnerProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	defaults := service.ProfileDefaults{}
	if user, err := h.UserRepo.GetByID(uid); err == nil && user != nil {
		defaults.Name = user.BusinessName
		defaults.Email = user.Email
		defaults.Phone = user.Phone
	}

	partner, err := h.PartnerLinkService.ResolveOrCreate(uid, defaults)
	if err != nil {
		respondWithMappedError(c, err, partnerErrorRules, response.CodeInternal, "partner profile resolution failed")
		return
	}

	response.Success(c, partner)
}

// ListPartners returns the active partners available for dispatch.
func (h *Handler) ListPartners(c *gin.Context) {
	partners, err := h.PartnerRepo.ListActive()
	if err != nil {
		respondError(c, response.CodeInternal, "partner listing failed", err)
		return
	}

	response.Success(c, partners)
}
