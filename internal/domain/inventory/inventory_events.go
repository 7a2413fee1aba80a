package inventory

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeStockBatch = "StockBatch"

// Event type constants
const (
	EventTypeStockBatchAdded   = "StockBatchAdded"
	EventTypeStockLevelLow     = "StockLevelLow"
	EventTypeStockBatchExpired = "StockBatchExpired"
)

// StockBatchAddedEvent is published when a new batch arrives
type StockBatchAddedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID `json:"batch_id"`
	ProductID   uuid.UUID `json:"product_id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// NewStockBatchAddedEvent creates a new StockBatchAddedEvent
func NewStockBatchAddedEvent(batch *StockBatch) *StockBatchAddedEvent {
	return &StockBatchAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBatchAdded, AggregateTypeStockBatch, batch.ID),
		BatchID:         batch.ID,
		ProductID:       batch.ProductID,
		BatchNumber:     batch.BatchNumber,
		Quantity:        batch.Quantity,
		ExpiryDate:      batch.ExpiryDate,
	}
}

// StockLevelLowEvent is published when a batch drops to its threshold
type StockLevelLowEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID `json:"batch_id"`
	ProductID   uuid.UUID `json:"product_id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	Threshold   int       `json:"threshold"`
}

// NewStockLevelLowEvent creates a new StockLevelLowEvent
func NewStockLevelLowEvent(batch *StockBatch) *StockLevelLowEvent {
	return &StockLevelLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLevelLow, AggregateTypeStockBatch, batch.ID),
		BatchID:         batch.ID,
		ProductID:       batch.ProductID,
		BatchNumber:     batch.BatchNumber,
		Quantity:        batch.Quantity,
		Threshold:       batch.LowStockThreshold,
	}
}

// StockBatchExpiredEvent is published when a batch passes its expiry date
type StockBatchExpiredEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID `json:"batch_id"`
	ProductID   uuid.UUID `json:"product_id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// NewStockBatchExpiredEvent creates a new StockBatchExpiredEvent
func NewStockBatchExpiredEvent(batch *StockBatch) *StockBatchExpiredEvent {
	return &StockBatchExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBatchExpired, AggregateTypeStockBatch, batch.ID),
		BatchID:         batch.ID,
		ProductID:       batch.ProductID,
		BatchNumber:     batch.BatchNumber,
		Quantity:        batch.Quantity,
		ExpiryDate:      batch.ExpiryDate,
	}
}
