package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/blogilista/pkg/helpers"
	"github.com/oksasatya/blogilista/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUsernameKey = "username"
)

// TokenVerifier decodes a bearer token into its claims.
type TokenVerifier interface {
	ParseToken(token string) (*helpers.Claims, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Auth verifies the bearer token and stores the user id and username in the Gin context.
func Auth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "token missing or invalid", nil)
			return
		}
		claims, err := tokens.ParseToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "token missing or invalid", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		c.Next()
	}
}
