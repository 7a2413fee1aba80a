package persistence

import (
	"context"
	"errors"

	"github.com/epharmacy/backend/internal/domain/cart"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCartRepository implements cart.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID finds a cart line by its ID
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := conn(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCustomer finds all cart lines of a customer, oldest first
func (r *GormCartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]cart.CartItem, error) {
	var items []cart.CartItem
	if err := conn(ctx, r.db).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByCustomerAndProduct finds the customer's line for a product
func (r *GormCartRepository) FindByCustomerAndProduct(ctx context.Context, customerID, productID uuid.UUID) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := conn(ctx, r.db).
		First(&item, "customer_id = ? AND product_id = ?", customerID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Save creates or updates a cart line
func (r *GormCartRepository) Save(ctx context.Context, item *cart.CartItem) error {
	return conn(ctx, r.db).Save(item).Error
}

// Delete removes a cart line
func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&cart.CartItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearCustomer removes every line of a customer's cart
func (r *GormCartRepository) ClearCustomer(ctx context.Context, customerID uuid.UUID) error {
	return conn(ctx, r.db).
		Delete(&cart.CartItem{}, "customer_id = ?", customerID).Error
}

// Ensure GormCartRepository implements CartRepository
var _ cart.CartRepository = (*GormCartRepository)(nil)
