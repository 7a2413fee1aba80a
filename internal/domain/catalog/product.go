package catalog

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultGSTRate is applied when a product carries no explicit GST rate
var DefaultGSTRate = decimal.NewFromInt(18)

// Product represents a medicine or health product in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name                 string          `gorm:"type:varchar(200);not null;index"`
	Description          string          `gorm:"type:text"`
	CategoryID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Manufacturer         string          `gorm:"type:varchar(200);index"`
	Composition          string          `gorm:"type:text"`
	Price                decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MRP                  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GSTRate              decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	HSNCode              string          `gorm:"type:varchar(20);index"`
	RequiresPrescription bool            `gorm:"not null;default:false"`
	IsAvailable          bool            `gorm:"not null;default:false"`
	DosageForm           string          `gorm:"type:varchar(50)"` // tablet, syrup, injection, ...
	Strength             string          `gorm:"type:varchar(50)"`
	PackSize             string          `gorm:"type:varchar(50)"`
	ImageURL             string          `gorm:"type:varchar(500)"`
	IsActive             bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name, description string, categoryID uuid.UUID, price, mrp decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product must belong to a category")
	}
	if err := validatePricing(price, mrp); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Description:       description,
		CategoryID:        categoryID,
		Price:             price,
		MRP:               mrp,
		GSTRate:           decimal.Zero,
		IsActive:          true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's descriptive information
func (p *Product) Update(name, description, manufacturer, composition string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Manufacturer = manufacturer
	p.Composition = composition
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetCategory moves the product to another category
func (p *Product) SetCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Product must belong to a category")
	}
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetPricing sets the selling price and MRP
func (p *Product) SetPricing(price, mrp decimal.Decimal) error {
	if err := validatePricing(price, mrp); err != nil {
		return err
	}

	oldPrice := p.Price
	p.Price = price
	p.MRP = mrp
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetTax sets the GST rate and HSN code
func (p *Product) SetTax(gstRate decimal.Decimal, hsnCode string) error {
	if gstRate.IsNegative() || gstRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_GST_RATE", "GST rate must be between 0 and 100")
	}
	if len(hsnCode) > 20 {
		return shared.NewDomainError("INVALID_HSN_CODE", "HSN code cannot exceed 20 characters")
	}

	p.GSTRate = gstRate
	p.HSNCode = hsnCode
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPharmaDetails sets the pharmaceutical attributes
func (p *Product) SetPharmaDetails(requiresPrescription bool, dosageForm, strength, packSize string) {
	p.RequiresPrescription = requiresPrescription
	p.DosageForm = dosageForm
	p.Strength = strength
	p.PackSize = packSize
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetImage sets the product image URL
func (p *Product) SetImage(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_IMAGE_URL", "Image URL cannot exceed 500 characters")
	}
	p.ImageURL = url
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetAvailability flips availability based on sellable stock
// Inventory is the source of truth for the flag
func (p *Product) SetAvailability(available bool) {
	if p.IsAvailable == available {
		return
	}
	p.IsAvailable = available
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductAvailabilityChangedEvent(p))
}

// Activate restores the product to the catalog
func (p *Product) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.IsActive = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from sale without deleting history
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.IsActive = false
	p.IsAvailable = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsSellable returns true if the product can be added to a cart
func (p *Product) IsSellable() bool {
	return p.IsActive && p.IsAvailable
}

// EffectiveGSTRate returns the GST rate to apply at checkout
func (p *Product) EffectiveGSTRate() decimal.Decimal {
	if p.GSTRate.IsZero() {
		return DefaultGSTRate
	}
	return p.GSTRate
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePricing(price, mrp decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	if !mrp.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "MRP must be positive")
	}
	if price.GreaterThan(mrp) {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot exceed MRP")
	}
	return nil
}
