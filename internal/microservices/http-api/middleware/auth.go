package middleware

import (
	"errors"
	"net/http"
	"strings"

	"foodgram/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID  = "userID"
	ContextEmail   = "email"
	ContextTokenID = "tokenID"
)

// AuthMiddleware rejects requests without a valid token in the Authorization header.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}
		authenticate(c, authService, authHeader)
	}
}

// OptionalAuth identifies the user when a token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		authenticate(c, authService, authHeader)
	}
}

func authenticate(c *gin.Context, authService service.AuthService, authHeader string) {
	// "Bearer <token>", or "Token <token>" as DRF clients send it
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || (!strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "Token")) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		return
	}

	claims, err := authService.ValidateToken(c.Request.Context(), parts[1])
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	// Set user info in context for handlers to use
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextTokenID, claims.ID)

	c.Next()
}

// CurrentUserID returns the authenticated user id, or 0 and false for anonymous requests.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id != 0
}
