package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var batchSortFields = sortFieldsWith("batch_number", "expiry_date", "quantity")

// GormStockBatchRepository implements inventory.StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	var batch inventory.StockBatch
	if err := conn(ctx, r.db).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProduct finds all batches of a product, earliest expiry first
func (r *GormStockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindSellableByProduct finds active, unexpired batches with stock,
// ordered by expiry date ascending for first-expiry-first-out allocation
func (r *GormStockBatchRepository) FindSellableByProduct(ctx context.Context, productID uuid.UUID, at time.Time) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := conn(ctx, r.db).
		Where("product_id = ? AND is_active = ? AND quantity > 0 AND expiry_date > ?", productID, true, at).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAll finds all batches matching the filter
func (r *GormStockBatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockBatch, error) {
	query := r.applySearch(conn(ctx, r.db).Model(&inventory.StockBatch{}), filter)
	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, batchSortFields, "expiry_date")

	var batches []inventory.StockBatch
	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindLowStock finds active batches at or below their threshold
func (r *GormStockBatchRepository) FindLowStock(ctx context.Context) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := conn(ctx, r.db).
		Where("is_active = ? AND quantity <= low_stock_threshold", true).
		Order("quantity ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiringWithin finds active batches with stock expiring within the window
func (r *GormStockBatchRepository) FindExpiringWithin(ctx context.Context, days int) ([]inventory.StockBatch, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, days)

	var batches []inventory.StockBatch
	if err := conn(ctx, r.db).
		Where("is_active = ? AND quantity > 0 AND expiry_date > ? AND expiry_date <= ?", true, now, cutoff).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiredActive finds batches past expiry that are still active
func (r *GormStockBatchRepository) FindExpiredActive(ctx context.Context, at time.Time) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := conn(ctx, r.db).
		Where("is_active = ? AND expiry_date <= ?", true, at).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// SellableQuantity sums sellable stock across a product's batches
func (r *GormStockBatchRepository) SellableQuantity(ctx context.Context, productID uuid.UUID, at time.Time) (int, error) {
	var total struct {
		Quantity int
	}
	if err := conn(ctx, r.db).
		Model(&inventory.StockBatch{}).
		Select("COALESCE(SUM(quantity), 0) AS quantity").
		Where("product_id = ? AND is_active = ? AND expiry_date > ?", productID, true, at).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total.Quantity, nil
}

// ExistsByBatchNumber checks per-product batch number uniqueness
func (r *GormStockBatchRepository) ExistsByBatchNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&inventory.StockBatch{}).
		Where("product_id = ? AND batch_number = ?", productID, strings.ToUpper(strings.TrimSpace(batchNumber))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a batch
func (r *GormStockBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	return conn(ctx, r.db).Save(batch).Error
}

// SaveAll persists multiple batches in one transaction
func (r *GormStockBatchRepository) SaveAll(ctx context.Context, batches []*inventory.StockBatch) error {
	if len(batches) == 0 {
		return nil
	}
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches {
			if err := tx.Save(batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count counts batches matching the filter
func (r *GormStockBatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(conn(ctx, r.db).Model(&inventory.StockBatch{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStockBatchRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("batch_number LIKE ?", "%"+strings.ToUpper(filter.Search)+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}
	return query
}

// Ensure GormStockBatchRepository implements StockBatchRepository
var _ inventory.StockBatchRepository = (*GormStockBatchRepository)(nil)
