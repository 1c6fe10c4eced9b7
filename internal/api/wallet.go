package api

import (
	"context"  // Context for ownership lookups
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"expense_tracker/internal/domain"     // Importing domain models
	"expense_tracker/internal/ledger"     // Ledger service
	"expense_tracker/internal/middleware" // Ownership lookups
	"expense_tracker/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// WalletRequest represents a wallet create or update, JSON or multipart
type WalletRequest struct {
	Name  string `json:"name" form:"name"`   // Wallet name, required on create
	Image string `json:"image" form:"image"` // Remote icon URL, ignored when a file is uploaded
}

// WalletOwner looks up the owner of a wallet for the ownership middleware
func WalletOwner(svc *ledger.Service) middleware.OwnerLookup {
	return func(ctx context.Context, id string) (string, error) {
		wallet, err := svc.GetWallet(ctx, id)
		return wallet.UID, err
	}
}

// ListWalletsHandler returns the user's wallets, newest first
func ListWalletsHandler(svc *ledger.Service, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()          // Request context for cache and store
		userID := currentUser(c)            // Get userID from context
		cacheKey := walletsCacheKey(userID) // Cache key per user
		var cached []domain.Wallet          // Cached wallets
		// If cached data found, return it
		found, err := utils.GetCache(ctx, cache, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": cached, "cached": true})
			return
		}
		wallets, err := svc.ListWallets(ctx, domain.WalletQuery{UID: userID}) // Fetch from the store
		if err != nil {
			fail(c, err)
			return
		}
		// Cache the response for future requests
		if err := utils.SetCache(ctx, cache, cacheKey, wallets, ttl); err != nil {
			logrus.WithFields(logrus.Fields{"uid": userID, "error": err.Error()}).Warn("Failed to cache wallets")
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": wallets, "cached": false})
	}
}

// StreamWalletsHandler streams the user's wallets over Server-Sent Events
func StreamWalletsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.SubscribeWallets(c.Request.Context(), domain.WalletQuery{UID: currentUser(c)})
		if err != nil {
			fail(c, err)
			return
		}
		streamSnapshots(c, sub)
	}
}

// SaveWalletHandler creates a wallet, or updates the one named by :id
func SaveWalletHandler(svc *ledger.Service, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WalletRequest // Bind JSON or multipart request to struct
		if err := c.ShouldBind(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c)
			return
		}
		image, err := imageFromRequest(c, req.Image) // Uploaded file or remote URL
		if err != nil {
			fail(c, err)
			return
		}
		userID := currentUser(c) // Get userID from context
		id := c.Param("id")      // Empty on create
		result := svc.CreateOrUpdateWallet(c.Request.Context(), ledger.WalletInput{ID: id, UID: userID, Name: req.Name, Image: image})
		if result.Success {
			invalidateUser(c.Request.Context(), cache, userID) // Drop cached views
		}
		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated // New wallet
		}
		respond(c, status, result)
	}
}

// DeleteWalletHandler removes the wallet named by :id; its transactions stay
func DeleteWalletHandler(svc *ledger.Service, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUser(c) // Get userID from context
		result := svc.DeleteWallet(c.Request.Context(), c.Param("id"))
		if result.Success {
			invalidateUser(c.Request.Context(), cache, userID) // Drop cached views
		}
		respond(c, http.StatusOK, result)
	}
}
