package identity

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AddressType classifies a delivery address
type AddressType string

const (
	AddressTypeHome  AddressType = "home"
	AddressTypeWork  AddressType = "work"
	AddressTypeOther AddressType = "other"
)

// Address is a delivery address owned by a customer
type Address struct {
	shared.BaseEntity
	CustomerID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Type       AddressType `gorm:"type:varchar(10);not null;default:'home'"`
	Line1      string      `gorm:"type:varchar(255);not null"`
	Line2      string      `gorm:"type:varchar(255)"`
	City       string      `gorm:"type:varchar(100);not null"`
	State      string      `gorm:"type:varchar(100);not null"`
	PostalCode string      `gorm:"type:varchar(10);not null"`
	Country    string      `gorm:"type:varchar(100);not null;default:'India'"`
	IsDefault  bool        `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "customer_addresses"
}

// NewAddress creates a new delivery address
func NewAddress(customerID uuid.UUID, addrType AddressType, line1, line2, city, state, postalCode string) (*Address, error) {
	if addrType == "" {
		addrType = AddressTypeHome
	}
	if addrType != AddressTypeHome && addrType != AddressTypeWork && addrType != AddressTypeOther {
		return nil, shared.NewDomainError("INVALID_ADDRESS_TYPE", "Address type must be home, work, or other")
	}
	if err := validateAddressFields(line1, city, state, postalCode); err != nil {
		return nil, err
	}

	return &Address{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		Type:       addrType,
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		State:      strings.TrimSpace(state),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    "India",
	}, nil
}

// Update replaces the address fields
func (a *Address) Update(addrType AddressType, line1, line2, city, state, postalCode string) error {
	if addrType != AddressTypeHome && addrType != AddressTypeWork && addrType != AddressTypeOther {
		return shared.NewDomainError("INVALID_ADDRESS_TYPE", "Address type must be home, work, or other")
	}
	if err := validateAddressFields(line1, city, state, postalCode); err != nil {
		return err
	}

	a.Type = addrType
	a.Line1 = strings.TrimSpace(line1)
	a.Line2 = strings.TrimSpace(line2)
	a.City = strings.TrimSpace(city)
	a.State = strings.TrimSpace(state)
	a.PostalCode = strings.TrimSpace(postalCode)
	a.UpdatedAt = time.Now()

	return nil
}

// MarkDefault marks this address as the customer's default
func (a *Address) MarkDefault() {
	a.IsDefault = true
	a.UpdatedAt = time.Now()
}

// ClearDefault removes the default flag
func (a *Address) ClearDefault() {
	a.IsDefault = false
	a.UpdatedAt = time.Now()
}

// Format returns the address as a single display line
func (a *Address) Format() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func validateAddressFields(line1, city, state, postalCode string) error {
	if strings.TrimSpace(line1) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address line 1 cannot be empty")
	}
	if strings.TrimSpace(city) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "City cannot be empty")
	}
	if strings.TrimSpace(state) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "State cannot be empty")
	}
	pc := strings.TrimSpace(postalCode)
	if len(pc) < 4 || len(pc) > 10 {
		return shared.NewDomainError("INVALID_ADDRESS", "Postal code must be between 4 and 10 characters")
	}
	return nil
}
