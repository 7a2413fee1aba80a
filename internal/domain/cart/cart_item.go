package cart

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxQuantityPerItem caps how many units of one product a cart line may hold
const MaxQuantityPerItem = 50

// CartItem is one product line in a customer's cart
// A customer holds at most one line per product; adding merges quantities
type CartItem struct {
	shared.BaseEntity
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_customer_product,priority:1"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_customer_product,priority:2"`
	Quantity   int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCartItem creates a new cart line
func NewCartItem(customerID, productID uuid.UUID, quantity int) (*CartItem, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// Merge adds quantity to an existing line
func (i *CartItem) Merge(quantity int) error {
	if err := validateQuantity(i.Quantity + quantity); err != nil {
		return err
	}
	i.Quantity += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// ChangeQuantity sets an absolute quantity
func (i *CartItem) ChangeQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	return nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > MaxQuantityPerItem {
		return shared.NewDomainError("QUANTITY_LIMIT", "Quantity exceeds the per-item limit")
	}
	return nil
}
