package catalog

import (
	"context"
	"testing"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	t.Run("creates category", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

		categoryRepo.On("ExistsByName", mock.Anything, "Vitamins").Return(false, nil)
		categoryRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := service.CreateCategory(context.Background(), &CreateCategoryRequest{
			Name:        "Vitamins",
			Description: "Supplements and multivitamins",
		})
		require.NoError(t, err)
		assert.Equal(t, "Vitamins", resp.Name)
		assert.True(t, resp.IsActive)
		categoryRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

		categoryRepo.On("ExistsByName", mock.Anything, "Vitamins").Return(true, nil)

		_, err := service.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Vitamins"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CATEGORY_EXISTS", domainErr.Code)
		categoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	t.Run("renames category", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

		category := testCategory(t)
		categoryRepo.On("FindByID", mock.Anything, category.ID).Return(category, nil)
		categoryRepo.On("FindByName", mock.Anything, "Pain Management").Return(nil, shared.ErrNotFound)
		categoryRepo.On("Save", mock.Anything, category).Return(nil)

		resp, err := service.UpdateCategory(context.Background(), category.ID, &UpdateCategoryRequest{
			Name:        "Pain Management",
			Description: category.Description,
		})
		require.NoError(t, err)
		assert.Equal(t, "Pain Management", resp.Name)
	})

	t.Run("rejects rename onto another category", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

		category := testCategory(t)
		other, err := catalog.NewCategory("Vitamins", "")
		require.NoError(t, err)

		categoryRepo.On("FindByID", mock.Anything, category.ID).Return(category, nil)
		categoryRepo.On("FindByName", mock.Anything, "Vitamins").Return(other, nil)

		_, err = service.UpdateCategory(context.Background(), category.ID, &UpdateCategoryRequest{Name: "Vitamins"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CATEGORY_EXISTS", domainErr.Code)
	})

	t.Run("allows update keeping same name", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

		category := testCategory(t)
		categoryRepo.On("FindByID", mock.Anything, category.ID).Return(category, nil)
		categoryRepo.On("Save", mock.Anything, category).Return(nil)

		resp, err := service.UpdateCategory(context.Background(), category.ID, &UpdateCategoryRequest{
			Name:        category.Name,
			Description: "Updated description",
		})
		require.NoError(t, err)
		assert.Equal(t, "Updated description", resp.Description)
		categoryRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_ListCategories(t *testing.T) {
	t.Run("storefront sees active only", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

		active := testCategory(t)
		categoryRepo.On("FindActive", mock.Anything).Return([]catalog.Category{*active}, nil)

		categories, err := service.ListCategories(context.Background(), false)
		require.NoError(t, err)
		assert.Len(t, categories, 1)
		categoryRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("admin view includes inactive", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

		active := testCategory(t)
		inactive, err := catalog.NewCategory("Discontinued", "")
		require.NoError(t, err)
		require.NoError(t, inactive.Deactivate())

		categoryRepo.On("FindAll", mock.Anything, mock.Anything).
			Return([]catalog.Category{*inactive, *active}, nil)

		categories, err := service.ListCategories(context.Background(), true)
		require.NoError(t, err)
		assert.Len(t, categories, 2)
	})
}

func TestCategoryService_DeactivateCategory(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	service := NewCategoryService(categoryRepo, new(MockProductRepository), zap.NewNop())

	category := testCategory(t)
	categoryRepo.On("FindByID", mock.Anything, category.ID).Return(category, nil)
	categoryRepo.On("Save", mock.Anything, category).Return(nil)

	require.NoError(t, service.DeactivateCategory(context.Background(), category.ID))
	assert.False(t, category.IsActive)

	err := service.DeactivateCategory(context.Background(), category.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_INACTIVE", domainErr.Code)
}
