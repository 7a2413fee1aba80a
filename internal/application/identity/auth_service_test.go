package identity

import (
	"context"
	"testing"
	"time"

	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/epharmacy/backend/internal/infrastructure/auth"
	"github.com/epharmacy/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
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
	return args.Get(0).([]identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActiveByRole(ctx context.Context, role identity.Role) ([]identity.Customer, error) {
	args := m.Called(ctx, role)
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

// MockAddressRepository is a mock implementation of AddressRepository
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

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "unit-test-secret-key-for-auth-service",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "pharmacy-test",
		MaxRefreshCount:        3,
	})
}

func testCustomer(t *testing.T, password string) *identity.Customer {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	customer, err := identity.NewCustomer("ravi@example.com", "+919876543210", hash, "Ravi", "Kumar")
	require.NoError(t, err)
	customer.ClearDomainEvents()
	return customer
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	req := RegisterRequest{
		Email:     "ravi@example.com",
		Phone:     "+919876543210",
		Password:  "secret-password",
		FirstName: "Ravi",
		LastName:  "Kumar",
	}

	t.Run("creates account and returns tokens", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("ExistsByEmail", ctx, req.Email).Return(false, nil)
		repo.On("ExistsByPhone", ctx, req.Phone).Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.Customer")).Return(nil)

		svc := NewAuthService(repo, testJWTService(), auth.NewInMemoryTokenBlacklist(), nil, zap.NewNop())

		resp, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "ravi@example.com", resp.Customer.Email)
		assert.Equal(t, "customer", resp.Customer.Role)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("ExistsByEmail", ctx, req.Email).Return(true, nil)

		svc := NewAuthService(repo, testJWTService(), nil, nil, zap.NewNop())

		_, err := svc.Register(ctx, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_TAKEN", domainErr.Code)
	})

	t.Run("rejects duplicate phone", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("ExistsByEmail", ctx, req.Email).Return(false, nil)
		repo.On("ExistsByPhone", ctx, req.Phone).Return(true, nil)

		svc := NewAuthService(repo, testJWTService(), nil, nil, zap.NewNop())

		_, err := svc.Register(ctx, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PHONE_TAKEN", domainErr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tokens for valid credentials", func(t *testing.T) {
		customer := testCustomer(t, "secret-password")
		repo := new(MockCustomerRepository)
		repo.On("FindByEmail", ctx, "ravi@example.com").Return(customer, nil)

		svc := NewAuthService(repo, testJWTService(), nil, nil, zap.NewNop())

		resp, err := svc.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "secret-password"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, customer.ID, resp.Customer.ID)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		customer := testCustomer(t, "secret-password")
		repo := new(MockCustomerRepository)
		repo.On("FindByEmail", ctx, "ravi@example.com").Return(customer, nil)

		svc := NewAuthService(repo, testJWTService(), nil, nil, zap.NewNop())

		_, err := svc.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "wrong"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("does not reveal unknown email", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindByEmail", ctx, "unknown@example.com").Return(nil, shared.ErrNotFound)

		svc := NewAuthService(repo, testJWTService(), nil, nil, zap.NewNop())

		_, err := svc.Login(ctx, LoginRequest{Email: "unknown@example.com", Password: "whatever"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("rejects deactivated account", func(t *testing.T) {
		customer := testCustomer(t, "secret-password")
		require.NoError(t, customer.Deactivate())
		repo := new(MockCustomerRepository)
		repo.On("FindByEmail", ctx, "ravi@example.com").Return(customer, nil)

		svc := NewAuthService(repo, testJWTService(), nil, nil, zap.NewNop())

		_, err := svc.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "secret-password"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("issues new pair for valid refresh token", func(t *testing.T) {
		customer := testCustomer(t, "secret-password")
		repo := new(MockCustomerRepository)
		repo.On("FindByEmail", ctx, "ravi@example.com").Return(customer, nil)
		repo.On("FindByID", ctx, customer.ID).Return(customer, nil)

		svc := NewAuthService(repo, testJWTService(), auth.NewInMemoryTokenBlacklist(), nil, zap.NewNop())

		login, err := svc.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "secret-password"})
		require.NoError(t, err)

		resp, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEqual(t, login.RefreshToken, resp.RefreshToken)
	})

	t.Run("rejects revoked refresh token after logout", func(t *testing.T) {
		customer := testCustomer(t, "secret-password")
		repo := new(MockCustomerRepository)
		repo.On("FindByEmail", ctx, "ravi@example.com").Return(customer, nil)

		svc := NewAuthService(repo, testJWTService(), auth.NewInMemoryTokenBlacklist(), nil, zap.NewNop())

		login, err := svc.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "secret-password"})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, login.AccessToken, login.RefreshToken))

		_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: login.RefreshToken})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_REVOKED", domainErr.Code)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		svc := NewAuthService(new(MockCustomerRepository), testJWTService(), nil, nil, zap.NewNop())

		_, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: "garbage"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("stores new hash and revokes sessions", func(t *testing.T) {
		customer := testCustomer(t, "old-password-1")
		repo := new(MockCustomerRepository)
		repo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		repo.On("Save", ctx, customer).Return(nil)

		blacklist := auth.NewInMemoryTokenBlacklist()
		svc := NewAuthService(repo, testJWTService(), blacklist, nil, zap.NewNop())

		err := svc.ChangePassword(ctx, customer.ID, ChangePasswordRequest{
			OldPassword: "old-password-1",
			NewPassword: "new-password-1",
		})
		require.NoError(t, err)
		assert.True(t, auth.VerifyPassword(customer.PasswordHash, "new-password-1"))

		invalidated, err := blacklist.IsCustomerTokenInvalidated(ctx, customer.ID.String(), time.Now().Add(-time.Second))
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("rejects wrong old password", func(t *testing.T) {
		customer := testCustomer(t, "old-password-1")
		repo := new(MockCustomerRepository)
		repo.On("FindByID", ctx, customer.ID).Return(customer, nil)

		svc := NewAuthService(repo, testJWTService(), nil, nil, zap.NewNop())

		err := svc.ChangePassword(ctx, customer.ID, ChangePasswordRequest{
			OldPassword: "wrong",
			NewPassword: "new-password-1",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})
}
