package billing

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrder finds all payment attempts for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)

	// FindCompletedByOrder finds the successful payment for an order
	FindCompletedByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)

	// FindByCustomer finds a customer's payments
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error
}

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	// FindByID finds a refund by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Refund, error)

	// FindByOrder finds the refund for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Refund, error)

	// FindByCustomer finds a customer's refunds
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Refund, int64, error)

	// FindByStatus finds refunds in a state
	FindByStatus(ctx context.Context, status RefundStatus, filter shared.Filter) ([]Refund, int64, error)

	// ExistsForOrder checks the one-refund-per-order rule
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)

	// Save creates or updates a refund
	Save(ctx context.Context, refund *Refund) error
}
