package inventory

import (
	"context"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockBatchRepository defines the interface for stock batch persistence
type StockBatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)

	// FindByProduct finds all batches of a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockBatch, error)

	// FindSellableByProduct finds active, unexpired batches with stock,
	// ordered by expiry date ascending
	FindSellableByProduct(ctx context.Context, productID uuid.UUID, at time.Time) ([]StockBatch, error)

	// FindAll finds all batches matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockBatch, error)

	// FindLowStock finds active batches at or below their threshold
	FindLowStock(ctx context.Context) ([]StockBatch, error)

	// FindExpiringWithin finds active batches expiring within the window
	FindExpiringWithin(ctx context.Context, days int) ([]StockBatch, error)

	// FindExpiredActive finds batches past expiry that are still active
	FindExpiredActive(ctx context.Context, at time.Time) ([]StockBatch, error)

	// SellableQuantity sums sellable stock across a product's batches
	SellableQuantity(ctx context.Context, productID uuid.UUID, at time.Time) (int, error)

	// ExistsByBatchNumber checks per-product batch number uniqueness
	ExistsByBatchNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (bool, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *StockBatch) error

	// SaveAll persists multiple batches in one transaction
	SaveAll(ctx context.Context, batches []*StockBatch) error

	// Count counts batches matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
