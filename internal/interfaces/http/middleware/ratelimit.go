package middleware

import (
	"net/http"
	"strconv"

	"github.com/epharmacy/backend/internal/infrastructure/cache"
	"github.com/epharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit returns a middleware that throttles requests per client IP
// The limit parameter is advertised in the X-RateLimit-Limit header;
// enforcement lives in the limiter itself
func RateLimit(limiter cache.RateLimiter, limit int, logger *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, limit, logger, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with a custom key extractor
func RateLimitByKey(limiter cache.RateLimiter, limit int, logger *zap.Logger, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil && logger != nil {
			// The limiter fails open on backend errors; log and continue
			logger.Warn("Rate limiter check failed",
				zap.String("key", key),
				zap.Error(err))
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Next()
	}
}
