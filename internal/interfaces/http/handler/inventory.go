package handler

import (
	"strconv"

	inventoryapp "github.com/epharmacy/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles stock batch endpoints for the admin console
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// AddBatch registers a newly received stock batch
func (h *InventoryHandler) AddBatch(c *gin.Context) {
	var req inventoryapp.AddBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.AddBatch(c.Request.Context(), &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetBatch returns a single batch
func (h *InventoryHandler) GetBatch(c *gin.Context) {
	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	resp, err := h.stockService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListBatches returns batches, optionally filtered by product
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	var filter inventoryapp.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.ListBatches(c.Request.Context(), &filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpdateBatch changes a batch's price or threshold
func (h *InventoryHandler) UpdateBatch(c *gin.Context) {
	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req inventoryapp.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.UpdateBatch(c.Request.Context(), batchID, &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdjustQuantity applies a manual stock correction to a batch
func (h *InventoryHandler) AdjustQuantity(c *gin.Context) {
	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req inventoryapp.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.AdjustQuantity(c.Request.Context(), batchID, &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeactivateBatch withdraws a batch from sale
func (h *InventoryHandler) DeactivateBatch(c *gin.Context) {
	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	if err := h.stockService.DeactivateBatch(c.Request.Context(), batchID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// GetProductStock returns the sellable stock position for a product
func (h *InventoryHandler) GetProductStock(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	resp, err := h.stockService.GetProductStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListLowStock returns batches at or below their low-stock threshold
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	resp, err := h.stockService.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListExpiring returns active batches expiring within the given window
func (h *InventoryHandler) ListExpiring(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			h.BadRequest(c, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	resp, err := h.stockService.ListExpiring(c.Request.Context(), days)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
