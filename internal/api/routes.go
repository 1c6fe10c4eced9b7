package api

import (
	"time" // Cache TTL

	"expense_tracker/internal/assets"     // Image host
	"expense_tracker/internal/auth"       // Authentication service
	"expense_tracker/internal/ledger"     // Ledger service
	"expense_tracker/internal/middleware" // JWT and ownership middleware
	"expense_tracker/internal/session"    // Profile store contract
	"expense_tracker/internal/utils"      // Cache

	"github.com/gin-gonic/gin" // Gin web framework
)

// Dependencies are the services the HTTP API is built on
type Dependencies struct {
	Auth     *auth.Service    // Credentials and tokens
	Profiles session.Profiles // User profile documents
	Ledger   *ledger.Service  // Wallets and transactions
	Assets   assets.Host      // Image host, may be nil
	Cache    utils.Cache      // Response cache
	CacheTTL time.Duration    // Response cache lifetime
}

// RegisterRoutes mounts every endpoint on r
func RegisterRoutes(r gin.IRouter, deps Dependencies) {
	jwt := middleware.JWTAuthMiddleware(deps.Auth) // Bearer token check with revocation

	// User routes
	r.POST("/user", RegisterHandler(deps.Auth, deps.Profiles, deps.Assets))    // Registration endpoint
	r.POST("/user/login", LoginHandler(deps.Auth, deps.Profiles, deps.Assets)) // Login endpoint
	userGroup := r.Group("/user", jwt)
	userGroup.POST("/logout", LogoutHandler(deps.Auth, deps.Profiles))            // Logout endpoint
	userGroup.GET("", GetUserHandler(deps.Auth, deps.Profiles))                   // Current profile endpoint
	userGroup.PATCH("", UpdateUserHandler(deps.Auth, deps.Profiles, deps.Assets)) // Profile edit endpoint

	// Wallet routes (protected by JWT)
	walletOwner := middleware.OwnerOnlyMiddleware("Wallet", WalletOwner(deps.Ledger))
	walletGroup := r.Group("/wallet", jwt)
	walletGroup.GET("", ListWalletsHandler(deps.Ledger, deps.Cache, deps.CacheTTL))       // List wallets endpoint
	walletGroup.GET("/stream", StreamWalletsHandler(deps.Ledger))                         // Live wallets endpoint
	walletGroup.POST("", SaveWalletHandler(deps.Ledger, deps.Cache))                      // Create wallet endpoint
	walletGroup.PUT("/:id", walletOwner, SaveWalletHandler(deps.Ledger, deps.Cache))      // Update wallet endpoint
	walletGroup.DELETE("/:id", walletOwner, DeleteWalletHandler(deps.Ledger, deps.Cache)) // Delete wallet endpoint

	// Transaction routes (protected by JWT)
	transactionOwner := middleware.OwnerOnlyMiddleware("Transaction", TransactionOwner(deps.Ledger))
	transactionGroup := r.Group("/transactions", jwt)
	transactionGroup.GET("", ListTransactionsHandler(deps.Ledger))                                       // List transactions endpoint
	transactionGroup.GET("/stream", StreamTransactionsHandler(deps.Ledger))                              // Live transactions endpoint
	transactionGroup.POST("", SaveTransactionHandler(deps.Ledger, deps.Cache))                           // Create transaction endpoint
	transactionGroup.PUT("/:id", transactionOwner, SaveTransactionHandler(deps.Ledger, deps.Cache))      // Update transaction endpoint
	transactionGroup.DELETE("/:id", transactionOwner, DeleteTransactionHandler(deps.Ledger, deps.Cache)) // Delete transaction endpoint

	// Statistics route (protected by JWT)
	r.GET("/statistics", jwt, StatisticsHandler(deps.Ledger, deps.Cache, deps.CacheTTL)) // Summary endpoint
}
