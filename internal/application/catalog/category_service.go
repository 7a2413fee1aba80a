package catalog

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category management
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// CreateCategory creates a new category with a unique name
func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("CATEGORY_EXISTS", "A category with this name already exists")
	}

	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Error("failed to save category", zap.Error(err))
		return nil, err
	}

	s.logger.Info("category created",
		zap.String("category_id", category.ID.String()),
		zap.String("name", category.Name))

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetCategory returns a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ListCategories lists categories
// Admin callers can include inactive categories
func (s *CategoryService) ListCategories(ctx context.Context, includeInactive bool) ([]CategoryResponse, error) {
	var categories []catalog.Category
	var err error

	if includeInactive {
		filter := shared.DefaultFilter()
		filter.PageSize = 200
		filter.OrderBy = "name"
		filter.OrderDir = "asc"
		categories, err = s.categoryRepo.FindAll(ctx, filter)
	} else {
		categories, err = s.categoryRepo.FindActive(ctx)
	}
	if err != nil {
		return nil, err
	}

	return ToCategoryResponses(categories), nil
}

// UpdateCategory renames a category, keeping the name unique
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != category.Name {
		existing, err := s.categoryRepo.FindByName(ctx, req.Name)
		if err == nil && existing.ID != id {
			return nil, shared.NewDomainError("CATEGORY_EXISTS", "A category with this name already exists")
		}
	}

	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ActivateCategory restores a category
func (s *CategoryService) ActivateCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := category.Activate(); err != nil {
		return err
	}

	return s.categoryRepo.Save(ctx, category)
}

// DeactivateCategory hides a category
// Products remain attached and keep selling; only the grouping is hidden
func (s *CategoryService) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := category.Deactivate(); err != nil {
		return err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return err
	}

	s.logger.Info("category deactivated", zap.String("category_id", id.String()))
	return nil
}
