package handler

import (
	"context"

	billingapp "github.com/epharmacy/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type refundDecisionFunc func(ctx context.Context, adminID, refundID uuid.UUID, req *billingapp.ProcessRefundRequest) (*billingapp.RefundResponse, error)

// RefundHandler handles refund request and processing endpoints
type RefundHandler struct {
	BaseHandler
	refundService *billingapp.RefundService
}

// NewRefundHandler creates a new RefundHandler
func NewRefundHandler(refundService *billingapp.RefundService) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

// Request opens a refund request for a cancelled or returned order
func (h *RefundHandler) Request(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.RequestRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.refundService.Request(c.Request.Context(), customerID, &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a refund; customers only see their own
func (h *RefundHandler) Get(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	refundID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid refund ID format")
		return
	}

	resp, err := h.refundService.Get(c.Request.Context(), customerID, isAdmin(c), refundID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOwn returns the caller's refunds
func (h *RefundHandler) ListOwn(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter billingapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.refundService.ListOwn(c.Request.Context(), customerID, &filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListAll returns refunds for the admin console, filterable by status
func (h *RefundHandler) ListAll(c *gin.Context) {
	var filter billingapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.refundService.ListByStatus(c.Request.Context(), &filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Process approves a pending refund and settles it
func (h *RefundHandler) Process(c *gin.Context) {
	h.decide(c, h.refundService.Process)
}

// Reject declines a pending refund
func (h *RefundHandler) Reject(c *gin.Context) {
	h.decide(c, h.refundService.Reject)
}

func (h *RefundHandler) decide(c *gin.Context, apply refundDecisionFunc) {
	adminID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	refundID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid refund ID format")
		return
	}

	var req billingapp.ProcessRefundRequest
	// An empty body decides without a note
	_ = c.ShouldBindJSON(&req)

	resp, err := apply(c.Request.Context(), adminID, refundID, &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
