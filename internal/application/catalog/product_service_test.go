package catalog

import (
	"context"
	"testing"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, search catalog.ProductSearch, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, search, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, categoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*catalog.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindActive(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func testCategory(t *testing.T) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory("Pain Relief", "Analgesics and antipyretics")
	require.NoError(t, err)
	return category
}

func testProduct(t *testing.T, categoryID uuid.UUID) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(
		"Paracetamol 500mg",
		"Fever and mild pain relief",
		categoryID,
		decimal.NewFromFloat(24.50),
		decimal.NewFromFloat(30.00),
	)
	require.NoError(t, err)
	product.SetAvailability(true)
	product.ClearDomainEvents()
	return product
}

func TestProductService_CreateProduct(t *testing.T) {
	t.Run("creates product in active category", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		eventBus := new(MockEventPublisher)
		service := NewProductService(productRepo, categoryRepo, eventBus, zap.NewNop())

		category := testCategory(t)
		categoryRepo.On("FindByID", mock.Anything, category.ID).Return(category, nil)
		productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)
		eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		gst := decimal.NewFromInt(12)
		resp, err := service.CreateProduct(context.Background(), &CreateProductRequest{
			Name:                 "Azithromycin 500mg",
			Description:          "Antibiotic",
			CategoryID:           category.ID,
			Price:                decimal.NewFromFloat(85.00),
			MRP:                  decimal.NewFromFloat(102.00),
			GSTRate:              &gst,
			HSNCode:              "3004",
			Manufacturer:         "Cipla",
			RequiresPrescription: true,
			DosageForm:           "tablet",
			Strength:             "500mg",
			PackSize:             "3 tablets",
		})
		require.NoError(t, err)
		assert.Equal(t, "Azithromycin 500mg", resp.Name)
		assert.True(t, resp.RequiresPrescription)
		assert.True(t, gst.Equal(resp.GSTRate))
		assert.Equal(t, "Cipla", resp.Manufacturer)
		assert.False(t, resp.IsAvailable)
		productRepo.AssertExpectations(t)
		eventBus.AssertExpectations(t)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo, new(MockEventPublisher), zap.NewNop())

		categoryID := uuid.New()
		categoryRepo.On("FindByID", mock.Anything, categoryID).Return(nil, shared.ErrNotFound)

		_, err := service.CreateProduct(context.Background(), &CreateProductRequest{
			Name:       "Paracetamol 500mg",
			CategoryID: categoryID,
			Price:      decimal.NewFromFloat(24.50),
			MRP:        decimal.NewFromFloat(30.00),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects inactive category", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo, new(MockEventPublisher), zap.NewNop())

		category := testCategory(t)
		require.NoError(t, category.Deactivate())
		categoryRepo.On("FindByID", mock.Anything, category.ID).Return(category, nil)

		_, err := service.CreateProduct(context.Background(), &CreateProductRequest{
			Name:       "Paracetamol 500mg",
			CategoryID: category.ID,
			Price:      decimal.NewFromFloat(24.50),
			MRP:        decimal.NewFromFloat(30.00),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
	})

	t.Run("rejects price above MRP", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo, new(MockEventPublisher), zap.NewNop())

		category := testCategory(t)
		categoryRepo.On("FindByID", mock.Anything, category.ID).Return(category, nil)

		_, err := service.CreateProduct(context.Background(), &CreateProductRequest{
			Name:       "Paracetamol 500mg",
			CategoryID: category.ID,
			Price:      decimal.NewFromFloat(45.00),
			MRP:        decimal.NewFromFloat(30.00),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})
}

func TestProductService_ListProducts(t *testing.T) {
	t.Run("maps filters to search criteria", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository), new(MockEventPublisher), zap.NewNop())

		category := testCategory(t)
		products := []catalog.Product{*testProduct(t, category.ID)}
		productRepo.On("Search", mock.Anything,
			mock.MatchedBy(func(search catalog.ProductSearch) bool {
				return search.Query == "paracetamol" && search.AvailableOnly && !search.IncludeInactive
			}),
			mock.MatchedBy(func(filter shared.Filter) bool {
				return filter.Page == 2 && filter.PageSize == 10
			}),
		).Return(products, int64(11), nil)

		result, err := service.ListProducts(context.Background(), &ProductListFilter{
			Search:   "paracetamol",
			Page:     2,
			PageSize: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(11), result.Total)
		assert.Equal(t, 2, result.TotalPages)
		assert.Len(t, result.Items, 1)
	})

	t.Run("widens view when unavailable included", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository), new(MockEventPublisher), zap.NewNop())

		productRepo.On("Search", mock.Anything,
			mock.MatchedBy(func(search catalog.ProductSearch) bool {
				return !search.AvailableOnly
			}),
			mock.Anything,
		).Return([]catalog.Product{}, int64(0), nil)

		_, err := service.ListProducts(context.Background(), &ProductListFilter{IncludeUnavailable: true})
		require.NoError(t, err)
		productRepo.AssertExpectations(t)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		eventBus := new(MockEventPublisher)
		service := NewProductService(productRepo, categoryRepo, eventBus, zap.NewNop())

		category := testCategory(t)
		product := testProduct(t, category.ID)
		productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		productRepo.On("Save", mock.Anything, product).Return(nil)

		newPrice := decimal.NewFromFloat(22.00)
		eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := service.UpdateProduct(context.Background(), product.ID, &UpdateProductRequest{
			Price: &newPrice,
		})
		require.NoError(t, err)
		assert.True(t, newPrice.Equal(resp.Price))
		assert.Equal(t, "Paracetamol 500mg", resp.Name)
		assert.True(t, decimal.NewFromFloat(30.00).Equal(resp.MRP))
	})

	t.Run("rejects move to inactive category", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo, new(MockEventPublisher), zap.NewNop())

		category := testCategory(t)
		product := testProduct(t, category.ID)
		inactive := testCategory(t)
		require.NoError(t, inactive.Deactivate())

		productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		categoryRepo.On("FindByID", mock.Anything, inactive.ID).Return(inactive, nil)

		_, err := service.UpdateProduct(context.Background(), product.ID, &UpdateProductRequest{
			CategoryID: &inactive.ID,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_DeactivateProduct(t *testing.T) {
	productRepo := new(MockProductRepository)
	eventBus := new(MockEventPublisher)
	service := NewProductService(productRepo, new(MockCategoryRepository), eventBus, zap.NewNop())

	category := testCategory(t)
	product := testProduct(t, category.ID)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Save", mock.Anything, product).Return(nil)
	eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, service.DeactivateProduct(context.Background(), product.ID))
	assert.False(t, product.IsActive)
	assert.False(t, product.IsAvailable)

	// second deactivation is rejected by the aggregate
	err := service.DeactivateProduct(context.Background(), product.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_INACTIVE", domainErr.Code)
}
