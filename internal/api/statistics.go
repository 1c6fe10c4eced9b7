package api

import (
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"expense_tracker/internal/ledger" // Ledger service
	"expense_tracker/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// StatisticsHandler returns the user's balance, income, expenses and top
// expense categories for the period query parameter (week, month, year, all)
func StatisticsHandler(svc *ledger.Service, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()                           // Request context for cache and store
		userID := currentUser(c)                             // Get userID from context
		period, err := ledger.ParsePeriod(c.Query("period")) // Defaults to month
		if err != nil {
			fail(c, err)
			return
		}
		cacheKey := statsCacheKey(userID, period) // Cache key per user and period
		var cached ledger.Summary                 // Cached summary
		// If cached data found, return it
		found, err := utils.GetCache(ctx, cache, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": cached, "cached": true})
			return
		}
		summary, err := svc.Summary(ctx, userID, period) // Aggregate from the store
		if err != nil {
			fail(c, err)
			return
		}
		// Cache the response for future requests
		if err := utils.SetCache(ctx, cache, cacheKey, summary, ttl); err != nil {
			logrus.WithFields(logrus.Fields{"uid": userID, "error": err.Error()}).Warn("Failed to cache statistics")
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": summary, "cached": false})
	}
}
