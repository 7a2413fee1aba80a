package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/epharmacy/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockInvoiceRepository is a mock implementation of order.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*order.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *order.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

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

// MockRenderer is a mock implementation of Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, o *order.Order, invoiceNumber string) ([]byte, error) {
	args := m.Called(ctx, o, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newTestService(t *testing.T) (*Service, *MockInvoiceRepository, *MockOrderRepository, *MockRenderer, storage.ObjectStorage) {
	invoiceRepo := new(MockInvoiceRepository)
	orderRepo := new(MockOrderRepository)
	renderer := new(MockRenderer)
	store, err := storage.NewLocalObjectStorage(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	service := NewService(invoiceRepo, orderRepo, renderer, store, zaptest.NewLogger(t))
	return service, invoiceRepo, orderRepo, renderer, store
}

func paidOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.GenerateOrderNumber(customerID, time.Now()), customerID, "Ravi Sharma", order.TypePickup, "")
	require.NoError(t, err)
	require.NoError(t, o.AddItem(uuid.New(), "Paracetamol 500mg", "3004", decimal.NewFromInt(12), decimal.NewFromInt(100), 2, false, nil))
	require.NoError(t, o.Finalize())
	require.NoError(t, o.Confirm())
	o.ClearDomainEvents()
	return o
}

func TestService_Generate(t *testing.T) {
	t.Run("renders and stores the pdf", func(t *testing.T) {
		service, invoiceRepo, orderRepo, renderer, store := newTestService(t)

		customerID := uuid.New()
		o := paidOrder(t, customerID)

		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		invoiceRepo.On("FindByOrder", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		renderer.On("Render", mock.Anything, o, mock.MatchedBy(func(num string) bool {
			return strings.HasPrefix(num, "INV-")
		})).Return([]byte("%PDF-1.7 fake"), nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Invoice")).Return(nil)

		resp, err := service.Generate(context.Background(), customerID, false, o.ID)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.InvoiceNumber, "INV-"))

		exists, err := store.Exists(context.Background(), "invoices/"+resp.InvoiceNumber+".pdf")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("returns the existing invoice", func(t *testing.T) {
		service, invoiceRepo, orderRepo, renderer, _ := newTestService(t)

		customerID := uuid.New()
		o := paidOrder(t, customerID)
		existing, err := order.NewInvoice(o.ID, "INV-20260829120000-ABCD1234", "invoices/INV-20260829120000-ABCD1234.pdf")
		require.NoError(t, err)

		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		invoiceRepo.On("FindByOrder", mock.Anything, o.ID).Return(existing, nil)

		resp, err := service.Generate(context.Background(), customerID, false, o.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.InvoiceNumber, resp.InvoiceNumber)
		renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unpaid orders", func(t *testing.T) {
		service, _, orderRepo, renderer, _ := newTestService(t)

		customerID := uuid.New()
		o, err := order.NewOrder(order.GenerateOrderNumber(customerID, time.Now()), customerID, "Ravi Sharma", order.TypePickup, "")
		require.NoError(t, err)
		require.NoError(t, o.AddItem(uuid.New(), "Cetirizine 10mg", "3004", decimal.NewFromInt(12), decimal.NewFromInt(18), 1, false, nil))
		require.NoError(t, o.Finalize())

		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err = service.Generate(context.Background(), customerID, false, o.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDER_NOT_INVOICEABLE", domainErr.Code)
		renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects another customer's order", func(t *testing.T) {
		service, _, orderRepo, _, _ := newTestService(t)

		o := paidOrder(t, uuid.New())
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := service.Generate(context.Background(), uuid.New(), false, o.ID)
		require.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("save failure removes the stored pdf", func(t *testing.T) {
		service, invoiceRepo, orderRepo, renderer, store := newTestService(t)

		customerID := uuid.New()
		o := paidOrder(t, customerID)

		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		invoiceRepo.On("FindByOrder", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		renderer.On("Render", mock.Anything, o, mock.Anything).Return([]byte("%PDF-1.7"), nil)
		invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := service.Generate(context.Background(), customerID, false, o.ID)
		require.Error(t, err)

		inv := invoiceRepo.Calls[1].Arguments.Get(1).(*order.Invoice)
		exists, err := store.Exists(context.Background(), inv.FileKey)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestService_Download(t *testing.T) {
	service, invoiceRepo, orderRepo, _, store := newTestService(t)

	customerID := uuid.New()
	o := paidOrder(t, customerID)
	inv, err := order.NewInvoice(o.ID, "INV-20260829120000-ABCD1234", "invoices/INV-20260829120000-ABCD1234.pdf")
	require.NoError(t, err)
	require.NoError(t, store.Upload(context.Background(), inv.FileKey, []byte("%PDF-1.7 body"), "application/pdf"))

	orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	invoiceRepo.On("FindByOrder", mock.Anything, o.ID).Return(inv, nil)

	data, name, err := service.Download(context.Background(), customerID, false, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260829120000-ABCD1234.pdf", name)
	assert.Equal(t, []byte("%PDF-1.7 body"), data)
}
