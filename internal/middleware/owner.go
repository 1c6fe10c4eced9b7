package middleware

import (
	"context"  // Context for the record lookup
	"errors"   // Error kind matching
	"net/http" // HTTP status codes

	"expense_tracker/internal/domain" // Error kinds

	"github.com/gin-gonic/gin" // Gin web framework
)

// OwnerLookup returns the owner uid of the record with the given id
type OwnerLookup func(ctx context.Context, id string) (string, error)

// OwnerOnlyMiddleware loads the record named by the :id path parameter on each
// request and rejects records that belong to another user. A missing record is
// a 404, except on DELETE where the handler stays idempotent.
func OwnerOnlyMiddleware(resource string, lookup OwnerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID) // Get userID from context
		// Check if userID exists in context
		if userID == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, domain.Fail(domain.NewError(domain.ErrAuth, "middleware.owner", "Unauthorized", nil)))
			return
		}
		owner, err := lookup(c.Request.Context(), c.Param("id")) // Fetch the record owner
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if c.Request.Method == http.MethodDelete {
				c.Next() // Deleting a missing record is a no-op
				return
			}
			c.AbortWithStatusJSON(http.StatusNotFound, domain.Fail(domain.NotFound("middleware.owner", resource+" not found")))
			return
		case err != nil:
			// Store failure
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, domain.Fail(err))
			return
		}
		// Check the record belongs to the caller
		if owner != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, domain.Fail(domain.NewError(domain.ErrForbidden, "middleware.owner", "Access to this "+resource+" is not allowed", nil)))
			return
		}
		c.Next() // Owner, proceed to the next handler
	}
}
