package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var productSortFields = sortFieldsWith("name", "price", "mrp", "manufacturer")

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := conn(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := conn(ctx, r.db).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Search finds products matching the search criteria
func (r *GormProductRepository) Search(ctx context.Context, search catalog.ProductSearch, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.applySearch(conn(ctx, r.db).Model(&catalog.Product{}), search)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, productSortFields, "name")

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindByCategory finds all products in a category
func (r *GormProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	query := conn(ctx, r.db).
		Model(&catalog.Product{}).
		Where("category_id = ? AND is_active = ?", categoryID, true)
	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, productSortFields, "name")

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return conn(ctx, r.db).Save(product).Error
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&catalog.Product{})
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormProductRepository) applySearch(query *gorm.DB, search catalog.ProductSearch) *gorm.DB {
	if !search.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if search.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if search.Query != "" {
		pattern := "%" + strings.ToLower(search.Query) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(manufacturer) LIKE ? OR LOWER(composition) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if search.CategoryID != nil {
		query = query.Where("category_id = ?", *search.CategoryID)
	}
	if search.RequiresPrescription != nil {
		query = query.Where("requires_prescription = ?", *search.RequiresPrescription)
	}
	if search.MinPrice != nil {
		query = query.Where("price >= ?", *search.MinPrice)
	}
	if search.MaxPrice != nil {
		query = query.Where("price <= ?", *search.MaxPrice)
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
