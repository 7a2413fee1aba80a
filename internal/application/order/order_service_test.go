package order

import (
	"context"
	"testing"
	"time"

	"github.com/epharmacy/backend/internal/domain/cart"
	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/prescription"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, status *order.Status, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, customerID, status, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, status *order.Status, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) ([]order.StatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.StatusCount), args.Error(1)
}

// MockCartRepository is a mock implementation of cart.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.CartItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartItem), args.Error(1)
}

func (m *MockCartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]cart.CartItem, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.CartItem), args.Error(1)
}

func (m *MockCartRepository) FindByCustomerAndProduct(ctx context.Context, customerID, productID uuid.UUID) (*cart.CartItem, error) {
	args := m.Called(ctx, customerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartItem), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, item *cart.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartRepository) ClearCustomer(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

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

// MockStockBatchRepository is a mock implementation of inventory.StockBatchRepository
type MockStockBatchRepository struct {
	mock.Mock
}

func (m *MockStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindSellableByProduct(ctx context.Context, productID uuid.UUID, at time.Time) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, productID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindLowStock(ctx context.Context) ([]inventory.StockBatch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindExpiringWithin(ctx context.Context, days int) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindExpiredActive(ctx context.Context, at time.Time) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) SellableQuantity(ctx context.Context, productID uuid.UUID, at time.Time) (int, error) {
	args := m.Called(ctx, productID, at)
	return args.Int(0), args.Error(1)
}

func (m *MockStockBatchRepository) ExistsByBatchNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (bool, error) {
	args := m.Called(ctx, productID, batchNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockStockBatchRepository) SaveAll(ctx context.Context, batches []*inventory.StockBatch) error {
	args := m.Called(ctx, batches)
	return args.Error(0)
}

func (m *MockStockBatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPrescriptionRepository is a mock implementation of prescription.Repository
type MockPrescriptionRepository struct {
	mock.Mock
}

func (m *MockPrescriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prescription.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]prescription.Prescription, int64, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]prescription.Prescription), args.Get(1).(int64), args.Error(2)
}

func (m *MockPrescriptionRepository) FindByStatus(ctx context.Context, status prescription.Status, filter shared.Filter) ([]prescription.Prescription, int64, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]prescription.Prescription), args.Get(1).(int64), args.Error(2)
}

func (m *MockPrescriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]prescription.Prescription, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]prescription.Prescription), args.Get(1).(int64), args.Error(2)
}

func (m *MockPrescriptionRepository) FindUsableByCustomer(ctx context.Context, customerID uuid.UUID, at time.Time) ([]prescription.Prescription, error) {
	args := m.Called(ctx, customerID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]prescription.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) Save(ctx context.Context, p *prescription.Prescription) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPrescriptionRepository) CountByStatus(ctx context.Context) (map[prescription.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[prescription.Status]int64), args.Error(1)
}

// MockCustomerRepository is a mock implementation of identity.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*identity.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByPhone(ctx context.Context, phone string) (*identity.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActiveByRole(ctx context.Context, role identity.Role) ([]identity.Customer, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *identity.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAddressRepository is a mock implementation of identity.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Address), args.Error(1)
}

func (m *MockAddressRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]identity.Address, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Address), args.Error(1)
}

func (m *MockAddressRepository) FindDefaultByCustomer(ctx context.Context, customerID uuid.UUID) (*identity.Address, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Address), args.Error(1)
}

func (m *MockAddressRepository) ClearDefault(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockAddressRepository) Save(ctx context.Context, address *identity.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// stubTxManager runs the unit of work inline and records the outcome
type stubTxManager struct {
	calls      int
	rolledBack bool
}

func (m *stubTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if err := fn(ctx); err != nil {
		m.rolledBack = true
		return err
	}
	return nil
}

type testEnv struct {
	service          *Service
	orderRepo        *MockOrderRepository
	cartRepo         *MockCartRepository
	productRepo      *MockProductRepository
	batchRepo        *MockStockBatchRepository
	prescriptionRepo *MockPrescriptionRepository
	customerRepo     *MockCustomerRepository
	addressRepo      *MockAddressRepository
	tx               *stubTxManager
	eventBus         *MockEventPublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		orderRepo:        new(MockOrderRepository),
		cartRepo:         new(MockCartRepository),
		productRepo:      new(MockProductRepository),
		batchRepo:        new(MockStockBatchRepository),
		prescriptionRepo: new(MockPrescriptionRepository),
		customerRepo:     new(MockCustomerRepository),
		addressRepo:      new(MockAddressRepository),
		tx:               new(stubTxManager),
		eventBus:         new(MockEventPublisher),
	}
	env.service = NewService(
		env.orderRepo, env.cartRepo, env.productRepo, env.batchRepo,
		env.prescriptionRepo, env.customerRepo, env.addressRepo,
		env.tx, env.eventBus, zap.NewNop(),
	)
	env.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return env
}

func testCustomer(t *testing.T) *identity.Customer {
	t.Helper()
	customer, err := identity.NewCustomer("ravi@example.com", "+919876543210", "hash", "Ravi", "Sharma")
	require.NoError(t, err)
	customer.ClearDomainEvents()
	return customer
}

func testAddress(t *testing.T, customerID uuid.UUID) *identity.Address {
	t.Helper()
	address, err := identity.NewAddress(customerID, identity.AddressTypeHome, "12 MG Road", "", "Bengaluru", "Karnataka", "560001")
	require.NoError(t, err)
	return address
}

func testProduct(t *testing.T, price float64, rx bool) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(
		"Amoxicillin 250mg",
		"Antibiotic",
		uuid.New(),
		decimal.NewFromFloat(price),
		decimal.NewFromFloat(price*1.2),
	)
	require.NoError(t, err)
	require.NoError(t, product.SetTax(decimal.NewFromInt(12), "3004"))
	product.SetPharmaDetails(rx, "capsule", "250mg", "10 capsules")
	product.SetAvailability(true)
	product.ClearDomainEvents()
	return product
}

func testBatch(t *testing.T, productID uuid.UUID, number string, qty int, expiry time.Time) inventory.StockBatch {
	t.Helper()
	batch, err := inventory.NewStockBatch(productID, number, qty, expiry, decimal.NewFromInt(10), decimal.NewFromInt(30))
	require.NoError(t, err)
	batch.ClearDomainEvents()
	return *batch
}

func TestService_PlaceOrder(t *testing.T) {
	t.Run("places delivery order with FEFO allocation across batches", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		address := testAddress(t, customer.ID)
		product := testProduct(t, 100.00, false)
		line, err := cart.NewCartItem(customer.ID, product.ID, 8)
		require.NoError(t, err)

		// the earlier-expiring batch holds only 5, so the order spills into the later one
		early := testBatch(t, product.ID, "AMX-01", 5, time.Now().AddDate(0, 3, 0))
		late := testBatch(t, product.ID, "AMX-02", 20, time.Now().AddDate(0, 9, 0))

		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{*line}, nil)
		env.addressRepo.On("FindByID", mock.Anything, address.ID).Return(address, nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("FindSellableByProduct", mock.Anything, product.ID, mock.Anything).
			Return([]inventory.StockBatch{early, late}, nil)
		env.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
		env.batchRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
		env.cartRepo.On("ClearCustomer", mock.Anything, customer.ID).Return(nil)
		env.batchRepo.On("SellableQuantity", mock.Anything, product.ID, mock.Anything).Return(17, nil)

		resp, err := env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{
			Type:      "delivery",
			AddressID: &address.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Contains(t, resp.OrderNumber, "ORD-")
		require.Len(t, resp.Items, 1)
		require.Len(t, resp.Items[0].Batches, 2)
		assert.Equal(t, 5, resp.Items[0].Batches[0].Quantity)
		assert.Equal(t, 3, resp.Items[0].Batches[1].Quantity)

		// 8 * 100 = 800 subtotal, 12% GST = 96, flat shipping 50
		assert.True(t, decimal.NewFromInt(800).Equal(resp.Subtotal))
		assert.True(t, decimal.NewFromInt(96).Equal(resp.TaxAmount))
		assert.True(t, decimal.NewFromInt(50).Equal(resp.ShippingFee))
		assert.True(t, decimal.NewFromInt(946).Equal(resp.TotalAmount))

		// CGST/SGST split evenly
		require.Len(t, resp.TaxDetails, 1)
		assert.True(t, decimal.NewFromInt(48).Equal(resp.TaxDetails[0].CGST))
		assert.True(t, decimal.NewFromInt(48).Equal(resp.TaxDetails[0].SGST))

		env.cartRepo.AssertCalled(t, "ClearCustomer", mock.Anything, customer.ID)
	})

	t.Run("pickup order pays no shipping", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		product := testProduct(t, 50.00, false)
		line, err := cart.NewCartItem(customer.ID, product.ID, 2)
		require.NoError(t, err)
		batch := testBatch(t, product.ID, "AMX-01", 10, time.Now().AddDate(1, 0, 0))

		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{*line}, nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("FindSellableByProduct", mock.Anything, product.ID, mock.Anything).
			Return([]inventory.StockBatch{batch}, nil)
		env.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		env.batchRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
		env.cartRepo.On("ClearCustomer", mock.Anything, customer.ID).Return(nil)
		env.batchRepo.On("SellableQuantity", mock.Anything, product.ID, mock.Anything).Return(8, nil)

		resp, err := env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{Type: "pickup"})
		require.NoError(t, err)
		assert.True(t, resp.ShippingFee.IsZero())
		assert.Equal(t, 1, env.tx.calls)
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{}, nil)

		_, err := env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{Type: "pickup"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_CART", domainErr.Code)
	})

	t.Run("rejects when stock cannot cover the line", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		product := testProduct(t, 50.00, false)
		line, err := cart.NewCartItem(customer.ID, product.ID, 10)
		require.NoError(t, err)
		batch := testBatch(t, product.ID, "AMX-01", 4, time.Now().AddDate(1, 0, 0))

		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{*line}, nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("FindSellableByProduct", mock.Anything, product.ID, mock.Anything).
			Return([]inventory.StockBatch{batch}, nil)

		_, err = env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{Type: "pickup"})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		env.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("prescription product requires a usable covering prescription", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		product := testProduct(t, 80.00, true)
		line, err := cart.NewCartItem(customer.ID, product.ID, 1)
		require.NoError(t, err)
		batch := testBatch(t, product.ID, "AMX-01", 10, time.Now().AddDate(1, 0, 0))

		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{*line}, nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("FindSellableByProduct", mock.Anything, product.ID, mock.Anything).
			Return([]inventory.StockBatch{batch}, nil)
		env.prescriptionRepo.On("FindUsableByCustomer", mock.Anything, customer.ID, mock.Anything).
			Return([]prescription.Prescription{}, nil)

		_, err = env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{Type: "pickup"})
		require.ErrorIs(t, err, shared.ErrPrescriptionRequired)
	})

	t.Run("links and consumes the covering prescription", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		product := testProduct(t, 80.00, true)
		line, err := cart.NewCartItem(customer.ID, product.ID, 1)
		require.NoError(t, err)
		batch := testBatch(t, product.ID, "AMX-01", 10, time.Now().AddDate(1, 0, 0))

		rx, err := prescription.NewPrescription(
			customer.ID, "Dr. Meera Nair", "Apollo Clinic",
			time.Now().AddDate(0, 0, -1), "prescriptions/x.jpg", "image/jpeg",
			[]uuid.UUID{product.ID},
		)
		require.NoError(t, err)
		require.NoError(t, rx.Approve(uuid.New(), "ok"))
		rx.ClearDomainEvents()

		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{*line}, nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("FindSellableByProduct", mock.Anything, product.ID, mock.Anything).
			Return([]inventory.StockBatch{batch}, nil)
		env.prescriptionRepo.On("FindByID", mock.Anything, rx.ID).Return(rx, nil)
		env.prescriptionRepo.On("Save", mock.Anything, rx).Return(nil)
		env.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		env.batchRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
		env.cartRepo.On("ClearCustomer", mock.Anything, customer.ID).Return(nil)
		env.batchRepo.On("SellableQuantity", mock.Anything, product.ID, mock.Anything).Return(9, nil)

		resp, err := env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{
			Type:           "pickup",
			PrescriptionID: &rx.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.PrescriptionID)
		assert.Equal(t, rx.ID, *resp.PrescriptionID)
		assert.True(t, rx.IsUsed)
	})

	t.Run("draining the last batch flips the product unavailable", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		product := testProduct(t, 50.00, false)
		line, err := cart.NewCartItem(customer.ID, product.ID, 3)
		require.NoError(t, err)
		batch := testBatch(t, product.ID, "AMX-01", 3, time.Now().AddDate(1, 0, 0))

		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{*line}, nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("FindSellableByProduct", mock.Anything, product.ID, mock.Anything).
			Return([]inventory.StockBatch{batch}, nil)
		env.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		env.batchRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
		env.cartRepo.On("ClearCustomer", mock.Anything, customer.ID).Return(nil)
		env.batchRepo.On("SellableQuantity", mock.Anything, product.ID, mock.Anything).Return(0, nil)
		env.productRepo.On("Save", mock.Anything, product).Return(nil)

		_, err = env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{Type: "pickup"})
		require.NoError(t, err)

		env.productRepo.AssertCalled(t, "Save", mock.Anything, product)
		assert.False(t, product.IsAvailable)
	})

	t.Run("stock write failure aborts the whole placement", func(t *testing.T) {
		env := newTestEnv()

		customer := testCustomer(t)
		product := testProduct(t, 50.00, false)
		line, err := cart.NewCartItem(customer.ID, product.ID, 2)
		require.NoError(t, err)
		batch := testBatch(t, product.ID, "AMX-01", 10, time.Now().AddDate(1, 0, 0))

		env.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		env.cartRepo.On("FindByCustomer", mock.Anything, customer.ID).Return([]cart.CartItem{*line}, nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("FindSellableByProduct", mock.Anything, product.ID, mock.Anything).
			Return([]inventory.StockBatch{batch}, nil)
		env.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		env.batchRepo.On("SaveAll", mock.Anything, mock.Anything).Return(assert.AnError)

		_, err = env.service.PlaceOrder(context.Background(), customer.ID, &PlaceOrderRequest{Type: "pickup"})
		require.ErrorIs(t, err, assert.AnError)

		// the order save and the failed stock write share one unit of work
		assert.Equal(t, 1, env.tx.calls)
		assert.True(t, env.tx.rolledBack)
		env.cartRepo.AssertNotCalled(t, "ClearCustomer", mock.Anything, mock.Anything)
	})
}

func placedOrder(t *testing.T, customerID, productID, batchID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.GenerateOrderNumber(customerID, time.Now()), customerID, "Ravi Sharma", order.TypePickup, "")
	require.NoError(t, err)
	require.NoError(t, o.AddItem(productID, "Amoxicillin 250mg", "3004", decimal.NewFromInt(12), decimal.NewFromInt(100), 3, false, []order.BatchUse{
		{BatchID: batchID, BatchNumber: "AMX-01", Quantity: 3},
	}))
	require.NoError(t, o.Finalize())
	o.ClearDomainEvents()
	return o
}

func TestService_Cancel(t *testing.T) {
	t.Run("cancelling restores stock to source batches", func(t *testing.T) {
		env := newTestEnv()

		customerID := uuid.New()
		product := testProduct(t, 100.00, false)
		batch := testBatch(t, product.ID, "AMX-01", 7, time.Now().AddDate(1, 0, 0))
		o := placedOrder(t, customerID, product.ID, batch.ID)

		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		env.batchRepo.On("FindByID", mock.Anything, batch.ID).Return(&batch, nil)
		env.batchRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
		env.orderRepo.On("Save", mock.Anything, o).Return(nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("SellableQuantity", mock.Anything, product.ID, mock.Anything).Return(10, nil)

		resp, err := env.service.Cancel(context.Background(), customerID, false, o.ID, &CancelRequest{Reason: "ordered by mistake"})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, 10, batch.Quantity)
		assert.Equal(t, 1, env.tx.calls)
	})

	t.Run("restored stock re-flags a sold-out product", func(t *testing.T) {
		env := newTestEnv()

		customerID := uuid.New()
		product := testProduct(t, 100.00, false)
		product.SetAvailability(false)
		product.ClearDomainEvents()
		batch := testBatch(t, product.ID, "AMX-01", 3, time.Now().AddDate(1, 0, 0))
		require.NoError(t, batch.Deduct(3))
		batch.ClearDomainEvents()
		o := placedOrder(t, customerID, product.ID, batch.ID)

		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		env.batchRepo.On("FindByID", mock.Anything, batch.ID).Return(&batch, nil)
		env.batchRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
		env.orderRepo.On("Save", mock.Anything, o).Return(nil)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.batchRepo.On("SellableQuantity", mock.Anything, product.ID, mock.Anything).Return(3, nil)
		env.productRepo.On("Save", mock.Anything, product).Return(nil)

		_, err := env.service.Cancel(context.Background(), customerID, false, o.ID, &CancelRequest{Reason: "changed my mind"})
		require.NoError(t, err)

		env.productRepo.AssertCalled(t, "Save", mock.Anything, product)
		assert.True(t, product.IsAvailable)
	})

	t.Run("customer cannot cancel another customer's order", func(t *testing.T) {
		env := newTestEnv()

		o := placedOrder(t, uuid.New(), uuid.New(), uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := env.service.Cancel(context.Background(), uuid.New(), false, o.ID, &CancelRequest{})
		require.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("delivered orders cannot be cancelled", func(t *testing.T) {
		env := newTestEnv()

		customerID := uuid.New()
		o := placedOrder(t, customerID, uuid.New(), uuid.New())
		require.NoError(t, o.Confirm())
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.MarkReady())
		require.NoError(t, o.MarkDelivered())
		o.ClearDomainEvents()

		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := env.service.Cancel(context.Background(), customerID, false, o.ID, &CancelRequest{})
		require.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("walks the fulfilment flow", func(t *testing.T) {
		env := newTestEnv()

		o := placedOrder(t, uuid.New(), uuid.New(), uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		env.orderRepo.On("Save", mock.Anything, o).Return(nil)

		for _, status := range []string{"confirmed", "processing", "ready", "delivered"} {
			resp, err := env.service.UpdateStatus(context.Background(), o.ID, &UpdateStatusRequest{Status: status})
			require.NoError(t, err)
			assert.Equal(t, status, resp.Status)
		}
		assert.NotNil(t, o.DeliveredAt)
	})

	t.Run("rejects skipping states", func(t *testing.T) {
		env := newTestEnv()

		o := placedOrder(t, uuid.New(), uuid.New(), uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := env.service.UpdateStatus(context.Background(), o.ID, &UpdateStatusRequest{Status: "delivered"})
		require.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("pickup orders are not dispatched", func(t *testing.T) {
		env := newTestEnv()

		o := placedOrder(t, uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, o.Confirm())
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.MarkReady())
		o.ClearDomainEvents()

		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := env.service.UpdateStatus(context.Background(), o.ID, &UpdateStatusRequest{Status: "out_for_delivery"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ORDER_TYPE", domainErr.Code)
	})
}

func TestService_Stats(t *testing.T) {
	env := newTestEnv()

	env.orderRepo.On("CountByStatus", mock.Anything).Return([]order.StatusCount{
		{Status: order.StatusDelivered, Count: 10, Revenue: decimal.NewFromInt(9400)},
		{Status: order.StatusCancelled, Count: 2, Revenue: decimal.NewFromInt(1200)},
	}, nil)

	stats, err := env.service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalOrders)
	assert.True(t, decimal.NewFromInt(9400).Equal(stats.TotalRevenue))
}
