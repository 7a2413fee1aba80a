package auth

import (
	"testing"
	"time"

	"github.com/epharmacy/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-signing-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 168 * time.Hour,
		Issuer:                 "pharmacy-backend-test",
		MaxRefreshCount:        3,
	})
}

func TestJWTService_GenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	customerID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		CustomerID: customerID,
		Email:      "ravi@example.com",
		Role:       "customer",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	t.Run("access token carries identity claims", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, customerID.String(), claims.CustomerID)
		assert.Equal(t, "ravi@example.com", claims.Email)
		assert.Equal(t, "customer", claims.Role)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.False(t, claims.IsAdmin())

		id, err := claims.GetCustomerUUID()
		require.NoError(t, err)
		assert.Equal(t, customerID, id)
	})

	t.Run("refresh token carries minimal claims", func(t *testing.T) {
		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, customerID.String(), claims.CustomerID)
		assert.Empty(t, claims.Email)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
		assert.Equal(t, 0, claims.RefreshCount)
	})
}

func TestJWTService_ValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()

	t.Run("rejects garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects refresh token as access token", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(GenerateTokenInput{
			CustomerID: uuid.New(),
			Email:      "a@b.com",
			Role:       "customer",
		})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("rejects token signed with different secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                 "completely-different-secret-key-here",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "other",
			MaxRefreshCount:        3,
		})
		pair, err := other.GenerateTokenPair(GenerateTokenInput{
			CustomerID: uuid.New(),
			Email:      "a@b.com",
			Role:       "customer",
		})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expiring := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-for-jwt-signing-tests",
			AccessTokenExpiration:  -time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "pharmacy-backend-test",
			MaxRefreshCount:        3,
		})
		pair, err := expiring.GenerateTokenPair(GenerateTokenInput{
			CustomerID: uuid.New(),
			Email:      "a@b.com",
			Role:       "customer",
		})
		require.NoError(t, err)

		_, err = expiring.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestJWTService_RefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	customerID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		CustomerID: customerID,
		Email:      "ravi@example.com",
		Role:       "customer",
	})
	require.NoError(t, err)

	t.Run("issues new pair with incremented refresh count", func(t *testing.T) {
		newPair, err := svc.RefreshTokenPair(pair.RefreshToken, "ravi@example.com", "customer")
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(newPair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, claims.RefreshCount)

		accessClaims, err := svc.ValidateAccessToken(newPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, customerID.String(), accessClaims.CustomerID)
		assert.Equal(t, "ravi@example.com", accessClaims.Email)
	})

	t.Run("enforces max refresh count", func(t *testing.T) {
		current := pair.RefreshToken
		var refreshErr error
		for i := 0; i < 5; i++ {
			newPair, err := svc.RefreshTokenPair(current, "ravi@example.com", "customer")
			if err != nil {
				refreshErr = err
				break
			}
			current = newPair.RefreshToken
		}
		assert.ErrorIs(t, refreshErr, ErrMaxRefreshExceeded)
	})

	t.Run("rejects access token as refresh token", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.AccessToken, "ravi@example.com", "customer")
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestClaims_Helpers(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		CustomerID: uuid.New(),
		Email:      "admin@pharmacy.test",
		Role:       "admin",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	assert.True(t, claims.IsAdmin())
	assert.False(t, claims.GetIssuedAtTime().IsZero())
	assert.True(t, claims.GetExpiresAtTime().After(time.Now()))
	assert.Greater(t, claims.GetRemainingTTL(), time.Duration(0))
}
