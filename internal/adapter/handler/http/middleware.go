package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

const (
	authorizationHeaderKey  = "Authorization"
	authorizationTypeBearer = "bearer"
	authorizationPayloadKey = "authorization_payload"
)

// AuthMiddleware verifies the bearer token and stores its payload in the
// context. With no token service configured every caller acts as the owner.
func AuthMiddleware(tokenService ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenService == nil {
			c.Set(authorizationPayloadKey, &domain.TokenPayload{
				Subject: "local",
				Role:    domain.Owner,
			})
			c.Next()
			return
		}

		header := c.GetHeader(authorizationHeaderKey)
		if header == "" {
			newErrorResponse(c, http.StatusUnauthorized, "Authorization header is not provided")
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || strings.ToLower(fields[0]) != authorizationTypeBearer {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		payload, err := tokenService.VerifyToken(fields[1])
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(authorizationPayloadKey, payload)
		c.Next()
	}
}

// RequireOwner rejects callers whose token does not allow writes.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, exists := getAuthPayload(c, authorizationPayloadKey)
		if !exists {
			newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !payload.CanWrite() {
			newErrorResponse(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

func getAuthPayload(c *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := c.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	if !ok || payload == nil {
		return nil, false
	}
	return payload, true
}
