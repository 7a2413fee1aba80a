package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epharmacy/backend/internal/infrastructure/auth"
	"github.com/epharmacy/backend/internal/infrastructure/cache"
	"github.com/epharmacy/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-middleware",
		RefreshSecret:          "test-refresh-secret-key",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "pharmacy-test",
	})
}

func performRequest(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an ID when absent", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/ping", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("reuses the incoming header", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "req-abc"})
		assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-abc", w.Body.String())
	})
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWTService()

	r := gin.New()
	r.Use(JWTAuthWithConfig(JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/open"},
	}))
	r.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTCustomerID(c))
	})

	customerID := uuid.New()

	t.Run("skip path passes without token", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/open", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/protected", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/protected", map[string]string{AuthHeaderKey: "Basic abc"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{CustomerID: customerID, Email: "asha@example.com", Role: "customer"})
		require.NoError(t, err)

		w := performRequest(r, http.MethodGet, "/protected", map[string]string{
			AuthHeaderKey: BearerPrefix + pair.AccessToken,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, customerID.String(), w.Body.String())
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{CustomerID: customerID, Email: "asha@example.com", Role: "customer"})
		require.NoError(t, err)

		w := performRequest(r, http.MethodGet, "/protected", map[string]string{
			AuthHeaderKey: BearerPrefix + pair.RefreshToken,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJWTAuthBlacklist(t *testing.T) {
	jwtService := newJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()

	r := gin.New()
	r.Use(JWTAuthWithConfig(JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{CustomerID: uuid.New(), Email: "ravi@example.com", Role: "customer"})
	require.NoError(t, err)
	headers := map[string]string{AuthHeaderKey: BearerPrefix + pair.AccessToken}

	w := performRequest(r, http.MethodGet, "/protected", headers)
	require.Equal(t, http.StatusOK, w.Code)

	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddToBlacklist(t.Context(), claims.ID, claims.GetRemainingTTL()))

	w = performRequest(r, http.MethodGet, "/protected", headers)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	jwtService := newJWTService()

	r := gin.New()
	r.Use(JWTAuth(jwtService), RequireAdmin())
	r.GET("/admin/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("customer role is forbidden", func(t *testing.T) {
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{CustomerID: uuid.New(), Email: "meera@example.com", Role: "customer"})
		require.NoError(t, err)

		w := performRequest(r, http.MethodGet, "/admin/ping", map[string]string{
			AuthHeaderKey: BearerPrefix + pair.AccessToken,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin role passes", func(t *testing.T) {
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{CustomerID: uuid.New(), Email: "admin@example.com", Role: "admin"})
		require.NoError(t, err)

		w := performRequest(r, http.MethodGet, "/admin/ping", map[string]string{
			AuthHeaderKey: BearerPrefix + pair.AccessToken,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	limiter := cache.NewInMemoryRateLimiter(2, time.Minute)

	r := gin.New()
	r.Use(RateLimit(limiter, 2, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	w = performRequest(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	small := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("ok"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, small)
	assert.Equal(t, http.StatusOK, w.Code)

	big := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example.com"}

	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://shop.example.com"})
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets none", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example.com"})
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight always answers 204", func(t *testing.T) {
		w := performRequest(r, http.MethodOptions, "/ping", map[string]string{"Origin": "https://shop.example.com"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
