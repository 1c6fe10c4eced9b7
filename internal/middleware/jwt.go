package middleware

import (
	"context"  // Request context for the revocation lookup
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"expense_tracker/internal/domain" // Error kinds
	"expense_tracker/internal/utils"  // JWT claims

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	ContextUserID = "userID" // Authenticated user id
	ContextEmail  = "email"  // Authenticated email
	ContextToken  = "token"  // Raw bearer token, used by logout
)

// TokenVerifier checks a bearer token, including revocation
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*utils.Claims, error)
}

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, domain.Fail(domain.NewError(domain.ErrAuth, "middleware.jwt", "Missing or invalid Authorization header", nil)))
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")         // Extract the token string
		claims, err := verifier.Verify(c.Request.Context(), tokenStr) // Parse the token and check revocation
		if err != nil {
			status := http.StatusUnauthorized // Bad, expired or revoked token
			if domain.KindOf(err) == domain.ErrNetwork {
				status = http.StatusServiceUnavailable // Revocation store unreachable
			}
			c.AbortWithStatusJSON(status, domain.Fail(err))
			return
		}
		c.Set(ContextUserID, claims.UserID) // Store userID in context
		c.Set(ContextEmail, claims.Email)   // Store email in context
		c.Set(ContextToken, tokenStr)       // Keep the token for logout
		c.Next()                            // Proceed to the next handler
	}
}
