package api

import (
	"context"  // Context for ownership lookups
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Transaction dates

	"expense_tracker/internal/domain"     // Importing domain models
	"expense_tracker/internal/ledger"     // Ledger service
	"expense_tracker/internal/middleware" // Ownership lookups
	"expense_tracker/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact money arithmetic
)

// maxListLimit caps the limit query parameter
const maxListLimit = 500

// TransactionRequest represents a transaction create or update. JSON bodies
// carry the amount as a number or string; multipart forms as text.
type TransactionRequest struct {
	WalletID    string                 `json:"walletId" form:"walletId"`                                 // Target wallet
	Type        domain.TransactionType `json:"type" form:"type"`                                         // income or expense
	Amount      decimal.Decimal        `json:"amount" form:"-"`                                          // Positive magnitude, JSON
	AmountText  string                 `json:"-" form:"amount"`                                          // Positive magnitude, form
	Category    string                 `json:"category" form:"category"`                                 // Expense category
	Description string                 `json:"description" form:"description"`                           // Free text
	Date        time.Time              `json:"date" form:"date" time_format:"2006-01-02T15:04:05Z07:00"` // Defaults to now
	Image       string                 `json:"image" form:"image"`                                       // Remote receipt URL
}

// amount returns the bound amount from whichever encoding carried it
func (r TransactionRequest) amount() (decimal.Decimal, error) {
	if r.AmountText == "" {
		return r.Amount, nil
	}
	amount, err := decimal.NewFromString(r.AmountText)
	if err != nil {
		return decimal.Zero, domain.Validation("api.transaction", "Amount must be a number")
	}
	return amount, nil
}

// TransactionOwner looks up the owner of a transaction for the ownership middleware
func TransactionOwner(svc *ledger.Service) middleware.OwnerLookup {
	return func(ctx context.Context, id string) (string, error) {
		transaction, err := svc.GetTransaction(ctx, id)
		return transaction.UID, err
	}
}

// transactionQuery builds the list filter from the query string
func transactionQuery(c *gin.Context) (domain.TransactionQuery, error) {
	query := domain.TransactionQuery{
		UID:      currentUser(c),                          // Owner
		WalletID: c.Query("walletId"),                     // Filter by wallet
		Type:     domain.TransactionType(c.Query("type")), // Filter by type
	}
	if query.Type != "" && !query.Type.Valid() {
		return query, domain.Validation("api.transactions", "Transaction type must be income or expense")
	}
	if l := c.Query("limit"); l != "" {
		// If valid, set the limit
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > maxListLimit {
			return query, domain.Validation("api.transactions", "Invalid limit")
		}
		query.Limit = v
	}
	return query, nil
}

// ListTransactionsHandler returns the user's transactions, newest first
func ListTransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, err := transactionQuery(c)
		if err != nil {
			fail(c, err)
			return
		}
		transactions, err := svc.ListTransactions(c.Request.Context(), query)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, domain.OK("", transactions))
	}
}

// StreamTransactionsHandler streams the user's transactions over Server-Sent Events
func StreamTransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, err := transactionQuery(c)
		if err != nil {
			fail(c, err)
			return
		}
		sub, err := svc.SubscribeTransactions(c.Request.Context(), query)
		if err != nil {
			fail(c, err)
			return
		}
		streamSnapshots(c, sub)
	}
}

// SaveTransactionHandler creates a transaction, or updates the one named by :id
func SaveTransactionHandler(svc *ledger.Service, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransactionRequest // Bind JSON or multipart request to struct
		if err := c.ShouldBind(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c)
			return
		}
		amount, err := req.amount()
		if err != nil {
			fail(c, err)
			return
		}
		image, err := imageFromRequest(c, req.Image) // Uploaded file or remote URL
		if err != nil {
			fail(c, err)
			return
		}
		userID := currentUser(c) // Get userID from context
		id := c.Param("id")      // Empty on create
		result := svc.CreateOrUpdateTransaction(c.Request.Context(), ledger.TransactionInput{
			ID:          id,
			UID:         userID,
			WalletID:    req.WalletID,
			Type:        req.Type,
			Amount:      amount,
			Category:    req.Category,
			Description: req.Description,
			Date:        req.Date,
			Image:       image,
		})
		// The transaction may be written even when the wallet update failed
		invalidateUser(c.Request.Context(), cache, userID)
		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated // New transaction
		}
		respond(c, status, result)
	}
}

// DeleteTransactionHandler removes the transaction named by :id and restores the wallet
func DeleteTransactionHandler(svc *ledger.Service, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUser(c) // Get userID from context
		result := svc.DeleteTransaction(c.Request.Context(), domain.Transaction{ID: c.Param("id"), UID: userID})
		if result.Success {
			invalidateUser(c.Request.Context(), cache, userID) // Drop cached views
		}
		respond(c, http.StatusOK, result)
	}
}
