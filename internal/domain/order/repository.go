package order

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusCount pairs an order status with its count and revenue
type StatusCount struct {
	Status  Status          `json:"status"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order with items, batches, and tax details
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByCustomer finds a customer's orders, optionally filtered by status
	FindByCustomer(ctx context.Context, customerID uuid.UUID, status *Status, filter shared.Filter) ([]Order, int64, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, status *Status, filter shared.Filter) ([]Order, int64, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, o *Order) error

	// CountByStatus returns count and revenue grouped by status
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByOrder finds the invoice of an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error
}
