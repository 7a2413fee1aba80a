package catalog

import (
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated             = "ProductCreated"
	EventTypeProductPriceChanged        = "ProductPriceChanged"
	EventTypeProductAvailabilityChanged = "ProductAvailabilityChanged"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID            uuid.UUID `json:"product_id"`
	Name                 string    `json:"name"`
	CategoryID           uuid.UUID `json:"category_id"`
	RequiresPrescription bool      `json:"requires_prescription"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:            product.ID,
		Name:                 product.Name,
		CategoryID:           product.CategoryID,
		RequiresPrescription: product.RequiresPrescription,
	}
}

// ProductPriceChangedEvent is published when a product's price changes
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	MRP       decimal.Decimal `json:"mrp"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(product *Product, oldPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		OldPrice:        oldPrice,
		NewPrice:        product.Price,
		MRP:             product.MRP,
	}
}

// ProductAvailabilityChangedEvent is published when a product goes in or out of stock
type ProductAvailabilityChangedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	IsAvailable bool      `json:"is_available"`
}

// NewProductAvailabilityChangedEvent creates a new ProductAvailabilityChangedEvent
func NewProductAvailabilityChangedEvent(product *Product) *ProductAvailabilityChangedEvent {
	return &ProductAvailabilityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductAvailabilityChanged, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		IsAvailable:     product.IsAvailable,
	}
}
