package persistence

import (
	"context"
	"errors"

	"github.com/epharmacy/backend/internal/domain/billing"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var refundSortFields = sortFieldsWith("status", "amount", "processed_at")

// GormRefundRepository implements billing.RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// FindByID finds a refund by its ID
func (r *GormRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Refund, error) {
	var refund billing.Refund
	if err := conn(ctx, r.db).First(&refund, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindByOrder finds the refund for an order
func (r *GormRefundRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*billing.Refund, error) {
	var refund billing.Refund
	if err := conn(ctx, r.db).First(&refund, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindByCustomer finds a customer's refunds
func (r *GormRefundRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Refund, int64, error) {
	query := conn(ctx, r.db).
		Model(&billing.Refund{}).
		Where("customer_id = ?", customerID)
	return r.page(query, filter)
}

// FindByStatus finds refunds in a state
func (r *GormRefundRepository) FindByStatus(ctx context.Context, status billing.RefundStatus, filter shared.Filter) ([]billing.Refund, int64, error) {
	query := conn(ctx, r.db).
		Model(&billing.Refund{}).
		Where("status = ?", status)
	return r.page(query, filter)
}

// ExistsForOrder checks the one-refund-per-order rule
func (r *GormRefundRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&billing.Refund{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a refund
func (r *GormRefundRepository) Save(ctx context.Context, refund *billing.Refund) error {
	return conn(ctx, r.db).Save(refund).Error
}

func (r *GormRefundRepository) page(query *gorm.DB, filter shared.Filter) ([]billing.Refund, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, refundSortFields, "created_at")

	var refunds []billing.Refund
	if err := query.Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

// Ensure GormRefundRepository implements RefundRepository
var _ billing.RefundRepository = (*GormRefundRepository)(nil)
