package order

import (
	"context"
	"time"

	"github.com/epharmacy/backend/internal/domain/cart"
	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/prescription"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service coordinates order placement, fulfilment, and cancellation
type Service struct {
	orderRepo        order.Repository
	cartRepo         cart.CartRepository
	productRepo      catalog.ProductRepository
	batchRepo        inventory.StockBatchRepository
	prescriptionRepo prescription.Repository
	customerRepo     identity.CustomerRepository
	addressRepo      identity.AddressRepository
	allocator        *inventory.FEFOAllocator
	tx               shared.TransactionManager
	eventBus         shared.EventPublisher
	logger           *zap.Logger
}

// NewService creates a new order service
func NewService(
	orderRepo order.Repository,
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	batchRepo inventory.StockBatchRepository,
	prescriptionRepo prescription.Repository,
	customerRepo identity.CustomerRepository,
	addressRepo identity.AddressRepository,
	tx shared.TransactionManager,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo:        orderRepo,
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		batchRepo:        batchRepo,
		prescriptionRepo: prescriptionRepo,
		customerRepo:     customerRepo,
		addressRepo:      addressRepo,
		allocator:        inventory.NewFEFOAllocator(),
		tx:               tx,
		eventBus:         eventBus,
		logger:           logger,
	}
}

// PlaceOrder turns the customer's cart into a pending order
// Stock is decremented batch by batch in expiry order and the cart is cleared
func (s *Service) PlaceOrder(ctx context.Context, customerID uuid.UUID, req *PlaceOrderRequest) (*Response, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	items, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart is empty")
	}

	deliveryAddress := ""
	if order.Type(req.Type) == order.TypeDelivery {
		if req.AddressID == nil {
			return nil, shared.NewDomainError("ADDRESS_REQUIRED", "Delivery orders require a delivery address")
		}
		address, err := s.addressRepo.FindByID(ctx, *req.AddressID)
		if err != nil {
			return nil, err
		}
		if address.CustomerID != customerID {
			return nil, shared.ErrForbidden
		}
		deliveryAddress = address.Format()
	}

	now := time.Now()
	o, err := order.NewOrder(order.GenerateOrderNumber(customerID, now), customerID, customer.FullName(), order.Type(req.Type), deliveryAddress)
	if err != nil {
		return nil, err
	}

	// allocate stock per line; touched batches are saved together after
	// every line allocates, so a failing line leaves stock untouched
	touched := make(map[uuid.UUID]*inventory.StockBatch)
	for i := range items {
		line := &items[i]
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsSellable() {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product "+product.Name+" is no longer available")
		}

		batches, err := s.batchRepo.FindSellableByProduct(ctx, line.ProductID, now)
		if err != nil {
			return nil, err
		}
		allocations, err := s.allocator.Allocate(batches, line.Quantity, now)
		if err != nil {
			return nil, err
		}

		batchByID := make(map[uuid.UUID]*inventory.StockBatch, len(batches))
		for j := range batches {
			batchByID[batches[j].ID] = &batches[j]
		}

		uses := make([]order.BatchUse, 0, len(allocations))
		for _, alloc := range allocations {
			batch := touched[alloc.BatchID]
			if batch == nil {
				batch = batchByID[alloc.BatchID]
				touched[alloc.BatchID] = batch
			}
			if err := batch.Deduct(alloc.Quantity); err != nil {
				return nil, err
			}
			uses = append(uses, order.BatchUse{
				BatchID:     alloc.BatchID,
				BatchNumber: alloc.BatchNumber,
				Quantity:    alloc.Quantity,
			})
		}

		if err := o.AddItem(product.ID, product.Name, product.HSNCode, product.EffectiveGSTRate(), product.Price, line.Quantity, product.RequiresPrescription, uses); err != nil {
			return nil, err
		}
	}

	var rx *prescription.Prescription
	if o.RequiresPrescription() {
		rx, err = s.resolvePrescription(ctx, customerID, req.PrescriptionID, o.PrescriptionProductIDs(), now)
		if err != nil {
			return nil, err
		}
		o.AttachPrescription(rx.ID)
	}

	if err := o.Finalize(); err != nil {
		return nil, err
	}

	batchesToSave := make([]*inventory.StockBatch, 0, len(touched))
	productIDs := make(map[uuid.UUID]struct{})
	for _, batch := range touched {
		batchesToSave = append(batchesToSave, batch)
		productIDs[batch.ProductID] = struct{}{}
	}

	// one transaction: order, stock deductions, prescription consumption,
	// cart clear, and the availability flags all commit or roll back together
	var changed []*catalog.Product
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		if err := s.batchRepo.SaveAll(ctx, batchesToSave); err != nil {
			return err
		}
		if rx != nil {
			if err := rx.MarkUsed(o.ID); err != nil {
				return err
			}
			if err := s.prescriptionRepo.Save(ctx, rx); err != nil {
				return err
			}
		}
		if err := s.cartRepo.ClearCustomer(ctx, customerID); err != nil {
			return err
		}
		var syncErr error
		changed, syncErr = s.syncAvailability(ctx, productIDs)
		return syncErr
	})
	if err != nil {
		s.logger.Error("order placement failed",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, o)
	for _, batch := range touched {
		s.publishBatchEvents(ctx, batch)
	}
	for _, product := range changed {
		s.publishProductEvents(ctx, product)
	}

	s.logger.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.String()))

	resp := ToResponse(o)
	return &resp, nil
}

// resolvePrescription finds the approved prescription backing the order's
// prescription lines
func (s *Service) resolvePrescription(ctx context.Context, customerID uuid.UUID, prescriptionID *uuid.UUID, productIDs []uuid.UUID, at time.Time) (*prescription.Prescription, error) {
	if prescriptionID != nil {
		rx, err := s.prescriptionRepo.FindByID(ctx, *prescriptionID)
		if err != nil {
			return nil, err
		}
		if rx.CustomerID != customerID {
			return nil, shared.ErrForbidden
		}
		if !rx.IsUsable(at) {
			return nil, shared.NewDomainError("PRESCRIPTION_UNUSABLE", "Prescription is not approved, already used, or expired")
		}
		if !rx.Covers(productIDs) {
			return nil, shared.NewDomainError("PRESCRIPTION_MISMATCH", "Prescription does not cover all prescription items")
		}
		return rx, nil
	}

	usable, err := s.prescriptionRepo.FindUsableByCustomer(ctx, customerID, at)
	if err != nil {
		return nil, err
	}
	for i := range usable {
		if usable[i].Covers(productIDs) {
			return &usable[i], nil
		}
	}
	return nil, shared.ErrPrescriptionRequired
}

// Get returns an order; customers see only their own
func (s *Service) Get(ctx context.Context, callerID uuid.UUID, isAdmin bool, id uuid.UUID) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.CustomerID != callerID {
		return nil, shared.ErrForbidden
	}

	resp := ToResponse(o)
	return &resp, nil
}

// ListOwn lists the customer's orders
func (s *Service) ListOwn(ctx context.Context, customerID uuid.UUID, filter *ListFilter) (*shared.Paginated[Response], error) {
	domainFilter, status := buildFilter(filter)
	orders, total, err := s.orderRepo.FindByCustomer(ctx, customerID, status, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToResponses(orders), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListAll lists all orders for admins
func (s *Service) ListAll(ctx context.Context, filter *ListFilter) (*shared.Paginated[Response], error) {
	domainFilter, status := buildFilter(filter)
	orders, total, err := s.orderRepo.FindAll(ctx, status, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToResponses(orders), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateStatus moves an order along the fulfilment flow
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *UpdateStatusRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch order.Status(req.Status) {
	case order.StatusConfirmed:
		err = o.Confirm()
	case order.StatusProcessing:
		err = o.StartProcessing()
	case order.StatusReady:
		err = o.MarkReady()
	case order.StatusOutForDelivery:
		err = o.Dispatch()
	case order.StatusDelivered:
		err = o.MarkDelivered()
	case order.StatusReturned:
		err = o.Return(time.Now())
	default:
		err = shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	s.logger.Info("order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", req.Status))

	resp := ToResponse(o)
	return &resp, nil
}

// Cancel cancels an order and restores stock to its source batches
// Customers may cancel while pending or confirmed; admins at the same stages
func (s *Service) Cancel(ctx context.Context, callerID uuid.UUID, isAdmin bool, id uuid.UUID, req *CancelRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.CustomerID != callerID {
		return nil, shared.ErrForbidden
	}

	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}

	productIDs := make(map[uuid.UUID]struct{})
	for _, item := range o.Items {
		productIDs[item.ProductID] = struct{}{}
	}

	// restored stock, the freed prescription, the cancelled order, and the
	// availability flags commit as one unit
	var changed []*catalog.Product
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.restoreStock(ctx, o); err != nil {
			return err
		}
		if o.PrescriptionID != nil {
			rx, err := s.prescriptionRepo.FindByID(ctx, *o.PrescriptionID)
			if err == nil {
				rx.Release()
				if err := s.prescriptionRepo.Save(ctx, rx); err != nil {
					return err
				}
			}
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		var syncErr error
		changed, syncErr = s.syncAvailability(ctx, productIDs)
		return syncErr
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	for _, product := range changed {
		s.publishProductEvents(ctx, product)
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", id.String()),
		zap.String("reason", req.Reason))

	resp := ToResponse(o)
	return &resp, nil
}

// restoreStock returns allocated quantities to their source batches
func (s *Service) restoreStock(ctx context.Context, o *order.Order) error {
	touched := make(map[uuid.UUID]*inventory.StockBatch)
	for _, item := range o.Items {
		for _, use := range item.Batches {
			batch := touched[use.BatchID]
			if batch == nil {
				found, err := s.batchRepo.FindByID(ctx, use.BatchID)
				if err != nil {
					return err
				}
				batch = found
				touched[use.BatchID] = batch
			}
			if err := batch.Restock(use.Quantity); err != nil {
				return err
			}
		}
	}

	batches := make([]*inventory.StockBatch, 0, len(touched))
	for _, batch := range touched {
		batches = append(batches, batch)
	}
	if len(batches) == 0 {
		return nil
	}
	return s.batchRepo.SaveAll(ctx, batches)
}

// syncAvailability recomputes availability flags for the given products and
// returns the ones whose flag changed. The product availability flag mirrors
// sellable stock, so every order-path stock mutation passes through here.
func (s *Service) syncAvailability(ctx context.Context, productIDs map[uuid.UUID]struct{}) ([]*catalog.Product, error) {
	now := time.Now()
	changed := make([]*catalog.Product, 0, len(productIDs))
	for productID := range productIDs {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		qty, err := s.batchRepo.SellableQuantity(ctx, productID, now)
		if err != nil {
			return nil, err
		}

		available := qty > 0 && product.IsActive
		if product.IsAvailable == available {
			continue
		}
		product.SetAvailability(available)
		if err := s.productRepo.Save(ctx, product); err != nil {
			return nil, err
		}
		changed = append(changed, product)
	}
	return changed, nil
}

// Stats returns order counts and revenue grouped by status
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{ByStatus: counts}
	for _, c := range counts {
		resp.TotalOrders += c.Count
		if c.Status != order.StatusCancelled {
			resp.TotalRevenue = resp.TotalRevenue.Add(c.Revenue)
		}
	}
	return resp, nil
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
	o.ClearDomainEvents()
}

func (s *Service) publishBatchEvents(ctx context.Context, batch *inventory.StockBatch) {
	events := batch.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock events", zap.Error(err))
	}
	batch.ClearDomainEvents()
}

func (s *Service) publishProductEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish availability events", zap.Error(err))
	}
	product.ClearDomainEvents()
}

func buildFilter(filter *ListFilter) (shared.Filter, *order.Status) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	var status *order.Status
	if filter.Status != "" {
		s := order.Status(filter.Status)
		status = &s
	}
	return domainFilter, status
}
