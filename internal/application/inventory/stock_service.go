package inventory

import (
	"context"
	"time"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockService handles stock batch management
// Product availability mirrors sellable stock, so every mutation that can
// change the sellable quantity re-syncs the product flag
type StockService struct {
	batchRepo   inventory.StockBatchRepository
	productRepo catalog.ProductRepository
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	batchRepo inventory.StockBatchRepository,
	productRepo catalog.ProductRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		batchRepo:   batchRepo,
		productRepo: productRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// AddBatch registers a newly received lot for a product
func (s *StockService) AddBatch(ctx context.Context, req *AddBatchRequest) (*BatchResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found")
	}

	exists, err := s.batchRepo.ExistsByBatchNumber(ctx, req.ProductID, req.BatchNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("BATCH_EXISTS", "Batch number already registered for this product")
	}

	batch, err := inventory.NewStockBatch(req.ProductID, req.BatchNumber, req.Quantity, req.ExpiryDate, req.CostPrice, req.MRP)
	if err != nil {
		return nil, err
	}
	if req.Threshold != nil {
		if err := batch.SetLowStockThreshold(*req.Threshold); err != nil {
			return nil, err
		}
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		s.logger.Error("failed to save stock batch", zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, batch)
	s.syncAvailability(ctx, product)

	s.logger.Info("stock batch added",
		zap.String("product_id", req.ProductID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int("quantity", batch.Quantity))

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// GetBatch returns a batch by ID
func (s *StockService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// GetProductStock lists a product's batches with the sellable total
func (s *StockService) GetProductStock(ctx context.Context, productID uuid.UUID) (*ProductStockResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	batches, err := s.batchRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &ProductStockResponse{
		ProductID:        productID,
		SellableQuantity: inventory.SellableQuantity(batches, time.Now()),
		Batches:          ToBatchResponses(batches),
	}, nil
}

// ListBatches lists batches with pagination for admin review
func (s *StockService) ListBatches(ctx context.Context, filter *BatchListFilter) (*shared.Paginated[BatchResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "expiry_date"
	domainFilter.OrderDir = "asc"
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}

	batches, err := s.batchRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.batchRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToBatchResponses(batches), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// AdjustQuantity records a physical count correction
func (s *StockService) AdjustQuantity(ctx context.Context, batchID uuid.UUID, req *AdjustQuantityRequest) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	previous := batch.Quantity
	if err := batch.AdjustQuantity(req.Quantity); err != nil {
		return nil, err
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, batch)
	s.syncAvailabilityByID(ctx, batch.ProductID)

	s.logger.Info("stock quantity adjusted",
		zap.String("batch_id", batchID.String()),
		zap.Int("from", previous),
		zap.Int("to", req.Quantity),
		zap.String("reason", req.Reason))

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// UpdateBatch updates batch settings
func (s *StockService) UpdateBatch(ctx context.Context, batchID uuid.UUID, req *UpdateBatchRequest) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if req.Threshold != nil {
		if err := batch.SetLowStockThreshold(*req.Threshold); err != nil {
			return nil, err
		}
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// DeactivateBatch removes a batch from sale (recall, damage)
func (s *StockService) DeactivateBatch(ctx context.Context, batchID uuid.UUID) error {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return err
	}

	if err := batch.Deactivate(); err != nil {
		return err
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return err
	}

	s.syncAvailabilityByID(ctx, batch.ProductID)

	s.logger.Info("stock batch deactivated",
		zap.String("batch_id", batchID.String()),
		zap.String("batch_number", batch.BatchNumber))
	return nil
}

// ListLowStock reports active batches at or below their threshold
func (s *StockService) ListLowStock(ctx context.Context) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// ListExpiring reports active batches expiring within the window
func (s *StockService) ListExpiring(ctx context.Context, days int) ([]BatchResponse, error) {
	if days <= 0 {
		days = 30
	}
	batches, err := s.batchRepo.FindExpiringWithin(ctx, days)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// SyncProductAvailability recomputes the availability flag for a product
// Called after stock mutations and by the expiry sweep job
func (s *StockService) SyncProductAvailability(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	return s.syncAvailability(ctx, product)
}

func (s *StockService) syncAvailabilityByID(ctx context.Context, productID uuid.UUID) {
	if err := s.SyncProductAvailability(ctx, productID); err != nil {
		s.logger.Warn("failed to sync product availability",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

func (s *StockService) syncAvailability(ctx context.Context, product *catalog.Product) error {
	qty, err := s.batchRepo.SellableQuantity(ctx, product.ID, time.Now())
	if err != nil {
		return err
	}

	available := qty > 0 && product.IsActive
	if product.IsAvailable == available {
		return nil
	}

	product.SetAvailability(available)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	events := product.GetDomainEvents()
	if len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish availability events", zap.Error(err))
		}
		product.ClearDomainEvents()
	}
	return nil
}

func (s *StockService) publishEvents(ctx context.Context, batch *inventory.StockBatch) {
	events := batch.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock events",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err))
	}
	batch.ClearDomainEvents()
}
