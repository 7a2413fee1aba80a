package catalog

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product management and storefront search
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// CreateProduct creates a new product in an existing active category
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
	}
	if !category.IsActive {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is inactive")
	}

	product, err := catalog.NewProduct(req.Name, req.Description, req.CategoryID, req.Price, req.MRP)
	if err != nil {
		return nil, err
	}

	if req.GSTRate != nil || req.HSNCode != "" {
		gstRate := decimal.Zero
		if req.GSTRate != nil {
			gstRate = *req.GSTRate
		}
		if err := product.SetTax(gstRate, req.HSNCode); err != nil {
			return nil, err
		}
	}
	if req.Manufacturer != "" || req.Composition != "" {
		if err := product.Update(product.Name, product.Description, req.Manufacturer, req.Composition); err != nil {
			return nil, err
		}
	}
	product.SetPharmaDetails(req.RequiresPrescription, req.DosageForm, req.Strength, req.PackSize)
	if req.ImageURL != "" {
		if err := product.SetImage(req.ImageURL); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("failed to save product", zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, product)

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns a single product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts searches products with pagination
// Storefront callers see only active, available products unless the
// filter explicitly widens the view
func (s *ProductService) ListProducts(ctx context.Context, filter *ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	search := catalog.ProductSearch{
		Query:                filter.Search,
		CategoryID:           filter.CategoryID,
		RequiresPrescription: filter.RequiresPrescription,
		AvailableOnly:        !filter.IncludeUnavailable,
		IncludeInactive:      filter.IncludeInactive,
	}
	if filter.MinPrice != nil {
		min := decimal.NewFromFloat(*filter.MinPrice)
		search.MinPrice = &min
	}
	if filter.MaxPrice != nil {
		max := decimal.NewFromFloat(*filter.MaxPrice)
		search.MaxPrice = &max
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}

	products, total, err := s.productRepo.Search(ctx, search, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToProductResponses(products), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateProduct applies a partial update to a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil || req.Manufacturer != nil || req.Composition != nil {
		name := product.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := product.Description
		if req.Description != nil {
			description = *req.Description
		}
		manufacturer := product.Manufacturer
		if req.Manufacturer != nil {
			manufacturer = *req.Manufacturer
		}
		composition := product.Composition
		if req.Composition != nil {
			composition = *req.Composition
		}
		if err := product.Update(name, description, manufacturer, composition); err != nil {
			return nil, err
		}
	}

	if req.CategoryID != nil {
		category, err := s.categoryRepo.FindByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		if !category.IsActive {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is inactive")
		}
		if err := product.SetCategory(*req.CategoryID); err != nil {
			return nil, err
		}
	}

	if req.Price != nil || req.MRP != nil {
		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		mrp := product.MRP
		if req.MRP != nil {
			mrp = *req.MRP
		}
		if err := product.SetPricing(price, mrp); err != nil {
			return nil, err
		}
	}

	if req.GSTRate != nil || req.HSNCode != nil {
		gstRate := product.GSTRate
		if req.GSTRate != nil {
			gstRate = *req.GSTRate
		}
		hsnCode := product.HSNCode
		if req.HSNCode != nil {
			hsnCode = *req.HSNCode
		}
		if err := product.SetTax(gstRate, hsnCode); err != nil {
			return nil, err
		}
	}

	if req.RequiresPrescription != nil || req.DosageForm != nil || req.Strength != nil || req.PackSize != nil {
		requiresPrescription := product.RequiresPrescription
		if req.RequiresPrescription != nil {
			requiresPrescription = *req.RequiresPrescription
		}
		dosageForm := product.DosageForm
		if req.DosageForm != nil {
			dosageForm = *req.DosageForm
		}
		strength := product.Strength
		if req.Strength != nil {
			strength = *req.Strength
		}
		packSize := product.PackSize
		if req.PackSize != nil {
			packSize = *req.PackSize
		}
		product.SetPharmaDetails(requiresPrescription, dosageForm, strength, packSize)
	}

	if req.ImageURL != nil {
		if err := product.SetImage(*req.ImageURL); err != nil {
			return nil, err
		}
	}

	if req.IsAvailable != nil {
		product.SetAvailability(*req.IsAvailable)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("failed to update product",
			zap.String("product_id", id.String()),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// ActivateProduct restores a product to the catalog
func (s *ProductService) ActivateProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := product.Activate(); err != nil {
		return err
	}

	return s.productRepo.Save(ctx, product)
}

// DeactivateProduct removes a product from sale
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := product.Deactivate(); err != nil {
		return err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	s.publishEvents(ctx, product)

	s.logger.Info("product deactivated", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
	product.ClearDomainEvents()
}
