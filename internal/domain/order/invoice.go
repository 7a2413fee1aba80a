package order

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Invoice is the tax invoice PDF generated for a paid order
type Invoice struct {
	shared.BaseEntity
	OrderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	InvoiceNumber string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	FileKey       string    `gorm:"type:varchar(500);not null"`
	GeneratedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice record for a rendered PDF
func NewInvoice(orderID uuid.UUID, invoiceNumber, fileKey string) (*Invoice, error) {
	if orderID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if invoiceNumber == "" || fileKey == "" {
		return nil, shared.ErrInvalidInput
	}

	return &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       orderID,
		InvoiceNumber: invoiceNumber,
		FileKey:       fileKey,
		GeneratedAt:   time.Now(),
	}, nil
}
