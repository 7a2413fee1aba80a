package handler

import (
	reportapp "github.com/epharmacy/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles the admin reporting endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Sales returns revenue totals, daily breakdown and top products
func (h *ReportHandler) Sales(c *gin.Context) {
	var query reportapp.SalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reportService.Sales(c.Request.Context(), &query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Inventory returns stock value plus low-stock and expiry alerts
func (h *ReportHandler) Inventory(c *gin.Context) {
	var query reportapp.InventoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reportService.Inventory(c.Request.Context(), &query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Customers returns account counts and top customers by spend
func (h *ReportHandler) Customers(c *gin.Context) {
	var query reportapp.CustomerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reportService.Customers(c.Request.Context(), &query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Prescriptions returns review-queue counts and average turnaround
func (h *ReportHandler) Prescriptions(c *gin.Context) {
	resp, err := h.reportService.Prescriptions(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
