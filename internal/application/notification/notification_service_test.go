package notification

import (
	"context"
	"testing"

	"github.com/epharmacy/backend/internal/domain/identity"
	domain "github.com/epharmacy/backend/internal/domain/notification"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock implementation of notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, customerID, unreadOnly, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) SaveAll(ctx context.Context, ns []*domain.Notification) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
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

func newTestService() (*Service, *MockNotificationRepository, *MockCustomerRepository) {
	notificationRepo := new(MockNotificationRepository)
	customerRepo := new(MockCustomerRepository)
	service := NewService(notificationRepo, customerRepo, zap.NewNop())
	return service, notificationRepo, customerRepo
}

func unreadNotification(t *testing.T, customerID uuid.UUID) *domain.Notification {
	t.Helper()
	n, err := domain.NewNotification(customerID, domain.TypeOrderUpdate, "Order confirmed", "Order ORD-1 is confirmed.", nil)
	require.NoError(t, err)
	return n
}

func TestService_MarkRead(t *testing.T) {
	t.Run("marks an unread notification", func(t *testing.T) {
		service, notificationRepo, _ := newTestService()

		customerID := uuid.New()
		n := unreadNotification(t, customerID)

		notificationRepo.On("FindByID", mock.Anything, n.ID).Return(n, nil)
		notificationRepo.On("Save", mock.Anything, n).Return(nil)

		resp, err := service.MarkRead(context.Background(), customerID, n.ID)
		require.NoError(t, err)
		assert.True(t, resp.IsRead)
		assert.NotNil(t, resp.ReadAt)
	})

	t.Run("skips the save when already read", func(t *testing.T) {
		service, notificationRepo, _ := newTestService()

		customerID := uuid.New()
		n := unreadNotification(t, customerID)
		n.MarkRead()

		notificationRepo.On("FindByID", mock.Anything, n.ID).Return(n, nil)

		_, err := service.MarkRead(context.Background(), customerID, n.ID)
		require.NoError(t, err)
		notificationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects another customer's notification", func(t *testing.T) {
		service, notificationRepo, _ := newTestService()

		n := unreadNotification(t, uuid.New())
		notificationRepo.On("FindByID", mock.Anything, n.ID).Return(n, nil)

		_, err := service.MarkRead(context.Background(), uuid.New(), n.ID)
		require.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestService_ListOwn(t *testing.T) {
	service, notificationRepo, _ := newTestService()

	customerID := uuid.New()
	n := unreadNotification(t, customerID)

	notificationRepo.On("FindByCustomer", mock.Anything, customerID, true, mock.Anything).
		Return([]domain.Notification{*n}, int64(1), nil)

	result, err := service.ListOwn(context.Background(), customerID, &ListFilter{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Order confirmed", result.Items[0].Title)
	assert.Equal(t, int64(1), result.Total)
}

func TestService_UnreadCount(t *testing.T) {
	service, notificationRepo, _ := newTestService()

	customerID := uuid.New()
	notificationRepo.On("CountUnread", mock.Anything, customerID).Return(int64(4), nil)

	resp, err := service.UnreadCount(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.Count)
}

func TestService_Broadcast(t *testing.T) {
	t.Run("sends to every active customer", func(t *testing.T) {
		service, notificationRepo, customerRepo := newTestService()

		customers := make([]identity.Customer, 3)
		for i := range customers {
			c, err := identity.NewCustomer("user"+uuid.NewString()[:4]+"@example.com", "9876500000", "hash", "User", "Test")
			require.NoError(t, err)
			customers[i] = *c
		}

		customerRepo.On("FindActiveByRole", mock.Anything, identity.RoleCustomer).Return(customers, nil)
		notificationRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(ns []*domain.Notification) bool {
			return len(ns) == 3 && ns[0].Type == domain.TypePromotion
		})).Return(nil)

		count, err := service.Broadcast(context.Background(), &BroadcastRequest{
			Type:    "promotion",
			Title:   "Monsoon sale",
			Message: "Flat 10% off on wellness products this week.",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("no recipients sends nothing", func(t *testing.T) {
		service, notificationRepo, customerRepo := newTestService()

		customerRepo.On("FindActiveByRole", mock.Anything, identity.RoleCustomer).Return([]identity.Customer{}, nil)

		count, err := service.Broadcast(context.Background(), &BroadcastRequest{Type: "system", Title: "Maintenance"})
		require.NoError(t, err)
		assert.Zero(t, count)
		notificationRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})
}
