package identity

import (
	"context"
	"errors"

	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles profile, address, and admin account operations
type CustomerService struct {
	customerRepo identity.CustomerRepository
	addressRepo  identity.AddressRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo identity.CustomerRepository,
	addressRepo identity.AddressRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		addressRepo:  addressRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// GetProfile returns a customer's profile
func (s *CustomerService) GetProfile(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// UpdateProfile updates a customer's profile fields
func (s *CustomerService) UpdateProfile(ctx context.Context, customerID uuid.UUID, req UpdateProfileRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.UpdateProfile(req.FirstName, req.LastName, req.DateOfBirth, identity.Gender(req.Gender)); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// ListAddresses returns all addresses of a customer
func (s *CustomerService) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]AddressResponse, error) {
	addresses, err := s.addressRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToAddressResponses(addresses), nil
}

// AddAddress creates a new delivery address for the customer
func (s *CustomerService) AddAddress(ctx context.Context, customerID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	address, err := identity.NewAddress(customerID, identity.AddressType(req.Type),
		req.Line1, req.Line2, req.City, req.State, req.PostalCode)
	if err != nil {
		return nil, err
	}

	// First address becomes the default automatically
	existing, err := s.addressRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if req.IsDefault || len(existing) == 0 {
		if err := s.addressRepo.ClearDefault(ctx, customerID); err != nil {
			return nil, err
		}
		address.MarkDefault()
	}

	if err := s.addressRepo.Save(ctx, address); err != nil {
		return nil, err
	}

	resp := ToAddressResponse(address)
	return &resp, nil
}

// UpdateAddress updates one of the customer's addresses
func (s *CustomerService) UpdateAddress(ctx context.Context, customerID, addressID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	address, err := s.ownedAddress(ctx, customerID, addressID)
	if err != nil {
		return nil, err
	}

	if err := address.Update(identity.AddressType(req.Type),
		req.Line1, req.Line2, req.City, req.State, req.PostalCode); err != nil {
		return nil, err
	}

	if req.IsDefault && !address.IsDefault {
		if err := s.addressRepo.ClearDefault(ctx, customerID); err != nil {
			return nil, err
		}
		address.MarkDefault()
	}

	if err := s.addressRepo.Save(ctx, address); err != nil {
		return nil, err
	}

	resp := ToAddressResponse(address)
	return &resp, nil
}

// SetDefaultAddress marks one address as the delivery default
func (s *CustomerService) SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	address, err := s.ownedAddress(ctx, customerID, addressID)
	if err != nil {
		return err
	}

	if err := s.addressRepo.ClearDefault(ctx, customerID); err != nil {
		return err
	}
	address.MarkDefault()

	return s.addressRepo.Save(ctx, address)
}

// DeleteAddress removes one of the customer's addresses
func (s *CustomerService) DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	address, err := s.ownedAddress(ctx, customerID, addressID)
	if err != nil {
		return err
	}
	return s.addressRepo.Delete(ctx, address.ID)
}

// ListCustomers returns accounts for the admin console
func (s *CustomerService) ListCustomers(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}
	if filter.Active != nil {
		domainFilter.Filters["is_active"] = *filter.Active
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, ToCustomerResponse(&customers[i]))
	}
	return out, total, nil
}

// ActivateCustomer re-enables a deactivated account
func (s *CustomerService) ActivateCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.Activate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// DeactivateCustomer disables an account
func (s *CustomerService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		events := customer.GetDomainEvents()
		if len(events) > 0 {
			if err := s.eventBus.Publish(ctx, events...); err != nil {
				s.logger.Error("Failed to publish customer events", zap.Error(err))
			}
			customer.ClearDomainEvents()
		}
	}

	s.logger.Info("Customer deactivated", zap.String("customer_id", customerID.String()))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// ownedAddress loads an address and verifies ownership
func (s *CustomerService) ownedAddress(ctx context.Context, customerID, addressID uuid.UUID) (*identity.Address, error) {
	address, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if address.CustomerID != customerID {
		return nil, shared.ErrForbidden
	}
	return address, nil
}
