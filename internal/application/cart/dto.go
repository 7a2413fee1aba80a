package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart, merging with an existing line
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest sets an absolute quantity; zero removes the line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// CartItemResponse is one enriched cart line
type CartItemResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ProductID            uuid.UUID       `json:"product_id"`
	ProductName          string          `json:"product_name"`
	ImageURL             string          `json:"image_url,omitempty"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	MRP                  decimal.Decimal `json:"mrp"`
	Quantity             int             `json:"quantity"`
	LineTotal            decimal.Decimal `json:"line_total"`
	RequiresPrescription bool            `json:"requires_prescription"`
	IsAvailable          bool            `json:"is_available"`
	AddedAt              time.Time       `json:"added_at"`
}

// CartResponse is the customer's full cart
type CartResponse struct {
	Items                []CartItemResponse `json:"items"`
	Subtotal             decimal.Decimal    `json:"subtotal"`
	TotalItems           int                `json:"total_items"`
	RequiresPrescription bool               `json:"requires_prescription"`
}
