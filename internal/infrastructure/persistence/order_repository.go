package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var orderSortFields = sortFieldsWith("order_number", "status", "total_amount", "delivered_at")

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with items, batches, and tax details
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := conn(ctx, r.db).
		Preload("Items.Batches").
		Preload("TaxDetails").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by its number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := conn(ctx, r.db).
		Preload("Items.Batches").
		Preload("TaxDetails").
		First(&o, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByCustomer finds a customer's orders, optionally filtered by status
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, status *order.Status, filter shared.Filter) ([]order.Order, int64, error) {
	query := conn(ctx, r.db).
		Model(&order.Order{}).
		Where("customer_id = ?", customerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.page(query, filter)
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, status *order.Status, filter shared.Filter) ([]order.Order, int64, error) {
	query := conn(ctx, r.db).Model(&order.Order{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	return r.page(query, filter)
}

// Save creates or updates an order with its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return conn(ctx, r.db).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(o).Error
}

// CountByStatus returns count and revenue grouped by status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) ([]order.StatusCount, error) {
	var rows []struct {
		Status  order.Status
		Count   int64
		Revenue decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&order.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make([]order.StatusCount, len(rows))
	for i, row := range rows {
		counts[i] = order.StatusCount{
			Status:  row.Status,
			Count:   row.Count,
			Revenue: row.Revenue,
		}
	}
	return counts, nil
}

func (r *GormOrderRepository) page(query *gorm.DB, filter shared.Filter) ([]order.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, orderSortFields, "created_at")

	var orders []order.Order
	if err := query.Preload("Items.Batches").Preload("TaxDetails").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Ensure GormOrderRepository implements Repository
var _ order.Repository = (*GormOrderRepository)(nil)
