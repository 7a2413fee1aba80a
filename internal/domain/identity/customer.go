package identity

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
)

// Role represents an account role
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Gender represents a customer's gender
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Customer represents an account in the store
// It is the aggregate root for account-related operations
type Customer struct {
	shared.BaseAggregateRoot
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	FirstName    string     `gorm:"type:varchar(100);not null"`
	LastName     string     `gorm:"type:varchar(100);not null"`
	DateOfBirth  *time.Time `gorm:"type:date"`
	Gender       Gender     `gorm:"type:varchar(10)"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'customer'"`
	IsActive     bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer account
func NewCustomer(email, phone, passwordHash, firstName, lastName string) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Phone:             phone,
		PasswordHash:      passwordHash,
		FirstName:         firstName,
		LastName:          lastName,
		Role:              RoleCustomer,
		IsActive:          true,
	}

	customer.AddDomainEvent(NewCustomerRegisteredEvent(customer))

	return customer, nil
}

// NewAdmin creates a new administrator account
func NewAdmin(email, phone, passwordHash, firstName, lastName string) (*Customer, error) {
	admin, err := NewCustomer(email, phone, passwordHash, firstName, lastName)
	if err != nil {
		return nil, err
	}
	admin.Role = RoleAdmin
	return admin, nil
}

// UpdateProfile updates the customer's profile information
func (c *Customer) UpdateProfile(firstName, lastName string, dateOfBirth *time.Time, gender Gender) error {
	if firstName == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if gender != "" && gender != GenderMale && gender != GenderFemale && gender != GenderOther {
		return shared.NewDomainError("INVALID_GENDER", "Gender must be male, female, or other")
	}
	if dateOfBirth != nil && dateOfBirth.After(time.Now()) {
		return shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth cannot be in the future")
	}

	c.FirstName = firstName
	c.LastName = lastName
	c.DateOfBirth = dateOfBirth
	c.Gender = gender
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// ChangePhone updates the customer's phone number
func (c *Customer) ChangePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return err
	}

	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// ChangePasswordHash replaces the stored password hash
func (c *Customer) ChangePasswordHash(hash string) error {
	if hash == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}

	c.PasswordHash = hash
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate enables the account
func (c *Customer) Activate() error {
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Account is already active")
	}

	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate disables the account
// A deactivated account cannot log in or place orders
func (c *Customer) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Account is already inactive")
	}

	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerDeactivatedEvent(c))

	return nil
}

// IsAdmin returns true if the account has the admin role
func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	if len(email) > 255 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 255 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}
	if len(phone) < 7 || len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone must be between 7 and 20 characters")
	}
	for _, r := range phone {
		if !(r >= '0' && r <= '9') && r != '+' && r != '-' && r != ' ' {
			return shared.NewDomainError("INVALID_PHONE", "Phone can only contain digits, spaces, + and -")
		}
	}
	return nil
}
