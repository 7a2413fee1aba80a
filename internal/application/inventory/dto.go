package inventory

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddBatchRequest represents a request to add a stock batch
type AddBatchRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"required,min=1,max=50"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	ExpiryDate  time.Time       `json:"expiry_date" binding:"required"`
	CostPrice   decimal.Decimal `json:"cost_price" binding:"required"`
	MRP         decimal.Decimal `json:"mrp" binding:"required"`
	Threshold   *int            `json:"low_stock_threshold"`
}

// AdjustQuantityRequest sets an absolute quantity after a physical count
type AdjustQuantityRequest struct {
	Quantity int    `json:"quantity" binding:"min=0"`
	Reason   string `json:"reason" binding:"max=200"`
}

// UpdateBatchRequest updates mutable batch settings
type UpdateBatchRequest struct {
	Threshold *int `json:"low_stock_threshold" binding:"omitempty,min=0"`
}

// BatchListFilter filters the admin batch listing
type BatchListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BatchResponse represents a stock batch in API responses
type BatchResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	BatchNumber       string          `json:"batch_number"`
	Quantity          int             `json:"quantity"`
	ExpiryDate        time.Time       `json:"expiry_date"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	MRP               decimal.Decimal `json:"mrp"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	IsActive          bool            `json:"is_active"`
	IsExpired         bool            `json:"is_expired"`
	IsLowStock        bool            `json:"is_low_stock"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductStockResponse summarises sellable stock for a product
type ProductStockResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	SellableQuantity int             `json:"sellable_quantity"`
	Batches          []BatchResponse `json:"batches"`
}

// ToBatchResponse converts a domain StockBatch to BatchResponse
func ToBatchResponse(b *inventory.StockBatch) BatchResponse {
	now := time.Now()
	return BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		BatchNumber:       b.BatchNumber,
		Quantity:          b.Quantity,
		ExpiryDate:        b.ExpiryDate,
		CostPrice:         b.CostPrice,
		MRP:               b.MRP,
		LowStockThreshold: b.LowStockThreshold,
		IsActive:          b.IsActive,
		IsExpired:         b.IsExpired(now),
		IsLowStock:        b.IsLowStock(),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []inventory.StockBatch) []BatchResponse {
	out := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, ToBatchResponse(&batches[i]))
	}
	return out
}
