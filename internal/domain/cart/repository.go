package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByID finds a cart line by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CartItem, error)

	// FindByCustomer finds all cart lines of a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]CartItem, error)

	// FindByCustomerAndProduct finds the customer's line for a product
	FindByCustomerAndProduct(ctx context.Context, customerID, productID uuid.UUID) (*CartItem, error)

	// Save creates or updates a cart line
	Save(ctx context.Context, item *CartItem) error

	// Delete removes a cart line
	Delete(ctx context.Context, id uuid.UUID) error

	// ClearCustomer removes every line of a customer's cart
	ClearCustomer(ctx context.Context, customerID uuid.UUID) error
}
