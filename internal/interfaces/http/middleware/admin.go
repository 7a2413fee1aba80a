package middleware

import (
	"net/http"

	"github.com/epharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireAdmin rejects requests whose JWT claims do not carry the admin role
// Must run after JWTAuth so the claims are present in the context
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"Authentication required",
				GetRequestID(c),
			))
			return
		}
		if !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"Admin access required",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
