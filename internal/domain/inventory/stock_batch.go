package inventory

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatch represents a purchased lot of a product with its own expiry
// It is the aggregate root for inventory operations
type StockBatch struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_product_number,priority:1"`
	BatchNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_batch_product_number,priority:2"`
	Quantity          int             `gorm:"not null;default:0"`
	ExpiryDate        time.Time       `gorm:"type:date;not null;index"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MRP               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LowStockThreshold int             `gorm:"not null;default:10"`
	IsActive          bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "stock_batches"
}

// NewStockBatch creates a new stock batch
// The expiry date must be in the future
func NewStockBatch(productID uuid.UUID, batchNumber string, quantity int, expiryDate time.Time, costPrice, mrp decimal.Decimal) (*StockBatch, error) {
	batchNumber = strings.ToUpper(strings.TrimSpace(batchNumber))

	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Batch must reference a product")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if len(batchNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot exceed 50 characters")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if !expiryDate.After(time.Now()) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Expiry date must be in the future")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if !mrp.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "MRP must be positive")
	}

	batch := &StockBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		BatchNumber:       batchNumber,
		Quantity:          quantity,
		ExpiryDate:        expiryDate,
		CostPrice:         costPrice,
		MRP:               mrp,
		LowStockThreshold: 10,
		IsActive:          true,
	}

	batch.AddDomainEvent(NewStockBatchAddedEvent(batch))

	return batch, nil
}

// Deduct removes quantity from the batch for an order
func (b *StockBatch) Deduct(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if !b.IsSellable(time.Now()) {
		return shared.ErrInvalidState
	}
	if qty > b.Quantity {
		return shared.ErrInsufficientStock
	}

	b.Quantity -= qty
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	if b.IsLowStock() {
		b.AddDomainEvent(NewStockLevelLowEvent(b))
	}

	return nil
}

// Restock returns quantity to the batch (order cancellation)
func (b *StockBatch) Restock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}

	b.Quantity += qty
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}

// AdjustQuantity sets an absolute quantity after a physical count
func (b *StockBatch) AdjustQuantity(qty int) error {
	if qty < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	b.Quantity = qty
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	if b.IsLowStock() {
		b.AddDomainEvent(NewStockLevelLowEvent(b))
	}

	return nil
}

// SetLowStockThreshold sets the alert threshold
func (b *StockBatch) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Threshold cannot be negative")
	}
	b.LowStockThreshold = threshold
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Deactivate removes the batch from sale without deleting history
func (b *StockBatch) Deactivate() error {
	if !b.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Batch is already inactive")
	}
	b.IsActive = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// IsExpired returns true if the batch has passed its expiry date
func (b *StockBatch) IsExpired(at time.Time) bool {
	return !b.ExpiryDate.After(at)
}

// IsSellable returns true if the batch can fulfil orders
func (b *StockBatch) IsSellable(at time.Time) bool {
	return b.IsActive && !b.IsExpired(at) && b.Quantity > 0
}

// IsLowStock returns true if the remaining quantity is at or below the threshold
func (b *StockBatch) IsLowStock() bool {
	return b.Quantity <= b.LowStockThreshold
}
