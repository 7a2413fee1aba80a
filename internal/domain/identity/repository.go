package identity

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByEmail finds a customer by email
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindByPhone finds a customer by phone number
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// FindAll finds all customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// FindActiveByRole finds active accounts with the given role
	FindActiveByRole(ctx context.Context, role Role) ([]Customer, error)

	// ExistsByEmail checks whether an account with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByPhone checks whether an account with the phone exists
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// AddressRepository defines the interface for address persistence
type AddressRepository interface {
	// FindByID finds an address by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)

	// FindByCustomer finds all addresses of a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Address, error)

	// FindDefaultByCustomer finds the customer's default address
	FindDefaultByCustomer(ctx context.Context, customerID uuid.UUID) (*Address, error)

	// ClearDefault removes the default flag from all addresses of a customer
	ClearDefault(ctx context.Context, customerID uuid.UUID) error

	// Save creates or updates an address
	Save(ctx context.Context, address *Address) error

	// Delete deletes an address
	Delete(ctx context.Context, id uuid.UUID) error
}
