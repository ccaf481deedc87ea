package public

import (
	"strconv"
	"strings"

	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/models"
	"github.com/retailsetu/delivery-engine/internal/repository"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ProofRequest carries delivery handover evidence.
type ProofRequest struct {
	PhotoURL     string `json:"photo_url"`
	SignatureURL string `json:"signature_url"`
	ReceiverName string `json:"receiver_name"`
	Notes        string `json:"notes"`
}

// TransitionRequest advances an order one lifecycle step.
type TransitionRequest struct {
	Status            string        `json:"status" binding:"required"`
	DeliveryPartnerID uint          `json:"delivery_partner_id"`
	Latitude          *float64      `json:"latitude"`
	Longitude         *float64      `json:"longitude"`
	Notes             string        `json:"notes"`
	Proof             *ProofRequest `json:"proof"`
}

// AssignPartnerRequest dispatches an order to a delivery partner.
type AssignPartnerRequest struct {
	DeliveryPartnerID uint `json:"delivery_partner_id" binding:"required"`
}

// TransitionOrder advances an order's delivery status.
func (h *Handler) TransitionOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	input := service.TransitionInput{
		OrderID:           orderID,
		Target:            strings.ToLower(strings.TrimSpace(req.Status)),
		Actor:             actor,
		DeliveryPartnerID: req.DeliveryPartnerID,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Notes:             req.Notes,
	}
	if req.Proof != nil {
		input.Proof = &service.ProofInput{
			PhotoURL:     req.Proof.PhotoURL,
			SignatureURL: req.Proof.SignatureURL,
			ReceiverName: req.Proof.ReceiverName,
			Notes:        req.Proof.Notes,
		}
	}

	order, err := h.DeliveryService.Transition(input)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	response.Success(c, order)
}

// AssignPartner dispatches a confirmed order to a delivery partner. It is the
// dispatched transition with the partner id made explicit.
func (h *Handler) AssignPartner(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req AssignPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.DeliveryService.Transition(service.TransitionInput{
		OrderID:           orderID,
		Target:            constants.OrderStatusDispatched,
		Actor:             actor,
		DeliveryPartnerID: req.DeliveryPartnerID,
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders returns the caller's orders, scoped by role.
func (h *Handler) ListOrders(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
	}
	if !h.scopeOrderFilter(c, actor, &filter) {
		return
	}

	orders, total, err := h.DeliveryService.ListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order listing failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder returns one order visible to the caller.
func (h *Handler) GetOrder(c *gin.Context) {
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

	response.Success(c, order)
}

// ListOrderEvents returns an order's delivery history, oldest first.
func (h *Handler) ListOrderEvents(c *gin.Context) {
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

	events, err := h.DeliveryService.ListEvents(orderID)
	if err != nil {
		respondError(c, response.CodeInternal, "delivery history fetch failed", err)
		return
	}

	response.Success(c, events)
}

// GetOrderProof returns the handover evidence for a delivered order.
func (h *Handler) GetOrderProof(c *gin.Context) {
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

	proof, err := h.DeliveryService.GetProof(orderID)
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "no delivery proof recorded"},
		}, response.CodeInternal, "delivery proof fetch failed")
		return
	}

	response.Success(c, proof)
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return 0, false
	}
	return uint(id), true
}

// scopeOrderFilter narrows a listing to what the actor may see. Partners see
// orders assigned to their linked partner row.
func (h *Handler) scopeOrderFilter(c *gin.Context, actor service.Actor, filter *repository.OrderListFilter) bool {
	switch actor.Role {
	case constants.RoleAdmin:
		return true
	case constants.RoleRetailer:
		filter.RetailerID = actor.UserID
		return true
	case constants.RoleWholesaler:
		filter.WholesalerID = actor.UserID
		return true
	case constants.RoleDeliveryPartner:
		partner, err := h.PartnerRepo.GetByUserID(actor.UserID)
		if err != nil {
			respondError(c, response.CodeInternal, "order listing failed", err)
			return false
		}
		if partner == nil {
			// No partner profile yet: nothing is assigned to them.
			response.SuccessWithPage(c, []models.Order{}, response.BuildPagination(filter.Page, filter.PageSize, 0))
			return false
		}
		filter.DeliveryPartnerID = partner.ID
		return true
	default:
		respondError(c, response.CodeForbidden, "role cannot list orders", nil)
		return false
	}
}

func (h *Handler) canSeeOrder(actor service.Actor, order *models.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	if order.RetailerID == actor.UserID || order.WholesalerID == actor.UserID {
		return true
	}
	if actor.Role == constants.RoleDeliveryPartner && order.DeliveryPartnerID != nil {
		partner, err := h.PartnerRepo.GetByUserID(actor.UserID)
		if err != nil || partner == nil {
			return false
		}
		return partner.ID == *order.DeliveryPartnerID
	}
	return false
}
