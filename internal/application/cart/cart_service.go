package cart

import (
	"context"
	"errors"
	"time"

	"github.com/epharmacy/backend/internal/domain/cart"
	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService handles the customer's shopping cart
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	batchRepo   inventory.StockBatchRepository
	logger      *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	batchRepo inventory.StockBatchRepository,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		batchRepo:   batchRepo,
		logger:      logger,
	}
}

// GetCart returns the customer's cart with product details and totals
func (s *CartService) GetCart(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	items, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &CartResponse{Items: []CartItemResponse{}, Subtotal: decimal.Zero}, nil
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	resp := &CartResponse{
		Items:    make([]CartItemResponse, 0, len(items)),
		Subtotal: decimal.Zero,
	}
	for i := range items {
		item := &items[i]
		product, ok := productByID[item.ProductID]
		if !ok {
			// product was hard-removed; drop the stale line
			if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
				s.logger.Warn("failed to drop stale cart line", zap.Error(err))
			}
			continue
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		resp.Items = append(resp.Items, CartItemResponse{
			ID:                   item.ID,
			ProductID:            product.ID,
			ProductName:          product.Name,
			ImageURL:             product.ImageURL,
			UnitPrice:            product.Price,
			MRP:                  product.MRP,
			Quantity:             item.Quantity,
			LineTotal:            lineTotal,
			RequiresPrescription: product.RequiresPrescription,
			IsAvailable:          product.IsSellable(),
			AddedAt:              item.CreatedAt,
		})
		resp.Subtotal = resp.Subtotal.Add(lineTotal)
		resp.TotalItems += item.Quantity
		if product.RequiresPrescription {
			resp.RequiresPrescription = true
		}
	}

	return resp, nil
}

// AddItem adds a product to the cart, merging quantities for an existing line
func (s *CartService) AddItem(ctx context.Context, customerID uuid.UUID, req *AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsSellable() {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for sale")
	}

	existing, err := s.cartRepo.FindByCustomerAndProduct(ctx, customerID, req.ProductID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	requested := req.Quantity
	if existing != nil {
		requested += existing.Quantity
	}

	if err := s.checkStock(ctx, req.ProductID, requested); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := existing.Merge(req.Quantity); err != nil {
			return nil, err
		}
		if err := s.cartRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		item, err := cart.NewCartItem(customerID, req.ProductID, req.Quantity)
		if err != nil {
			return nil, err
		}
		if err := s.cartRepo.Save(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, customerID)
}

// UpdateItem sets an absolute quantity for a cart line; zero removes it
func (s *CartService) UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, req *UpdateItemRequest) (*CartResponse, error) {
	item, err := s.ownedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Quantity == 0 {
		if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, customerID)
	}

	if err := s.checkStock(ctx, item.ProductID, req.Quantity); err != nil {
		return nil, err
	}

	if err := item.ChangeQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, customerID)
}

// RemoveItem removes a cart line
func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartResponse, error) {
	item, err := s.ownedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, customerID)
}

// ClearCart removes every line of the customer's cart
func (s *CartService) ClearCart(ctx context.Context, customerID uuid.UUID) error {
	return s.cartRepo.ClearCustomer(ctx, customerID)
}

// checkStock verifies the requested quantity against sellable stock
func (s *CartService) checkStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	available, err := s.batchRepo.SellableQuantity(ctx, productID, time.Now())
	if err != nil {
		return err
	}
	if quantity > available {
		return shared.ErrInsufficientStock
	}
	return nil
}

// ownedItem loads a cart line and verifies the caller owns it
func (s *CartService) ownedItem(ctx context.Context, customerID, itemID uuid.UUID) (*cart.CartItem, error) {
	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CustomerID != customerID {
		return nil, shared.ErrForbidden
	}
	return item, nil
}
