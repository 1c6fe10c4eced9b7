package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Server closed detection
	"net"       // Listener for the base context
	"net/http"  // HTTP server
	"os"        // Exit codes
	"os/signal" // Shutdown on interrupt
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"expense_tracker/internal/api"             // Custom package for API handlers
	"expense_tracker/internal/assets"          // Image host
	"expense_tracker/internal/auth"            // Authentication service
	"expense_tracker/internal/config"          // Custom package for configuration
	"expense_tracker/internal/db"              // Database connection and migration
	"expense_tracker/internal/ledger"          // Wallets and transactions
	"expense_tracker/internal/store/gormstore" // GORM document store
	"expense_tracker/internal/utils"           // Cache
	"expense_tracker/internal/watch"           // Change broker

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/sync/errgroup"   // Server and shutdown goroutines
)

// shutdownTimeout bounds the graceful shutdown, SSE streams included
const shutdownTimeout = 10 * time.Second

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(cfg); err != nil {
		logrus.WithField("error", err.Error()).Error("Server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database and keep the schema current
	gdb, err := db.Open(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	// Redis backs the cache and the change broker when configured
	var cache utils.Cache = utils.NewMemoryCache()
	var broker watch.Broker = watch.NewMemoryBroker()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()
		// Test Redis connection
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		cache = utils.NewRedisCache(redisClient)
		broker = watch.NewRedisBroker(redisClient)
		logrus.WithField("addr", cfg.RedisAddr).Info("Using Redis cache and broker")
	} else {
		logrus.Warn("REDIS_ADDR not set, using in-process cache and broker")
	}

	// Image host, optional
	var host assets.Host
	if cfg.AssetUploadURL != "" {
		host = assets.NewHTTPHost(cfg.AssetUploadURL, cfg.AssetUploadPreset, cfg.AssetTimeout)
	} else {
		logrus.Warn("ASSET_UPLOAD_URL not set, image uploads are disabled")
	}

	store := gormstore.New(gdb)
	deps := api.Dependencies{
		Auth:     auth.NewService(gdb, cfg.JWTSecret, cfg.JWTTTL, cache),
		Profiles: store,
		Ledger:   ledger.NewService(store, host, ledger.WithBroker(broker)),
		Assets:   host,
		Cache:    cache,
		CacheTTL: cfg.CacheTTL,
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return err
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Origin", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	api.RegisterRoutes(r, deps)

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Requests, SSE streams included, end when a signal arrives
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logrus.Info("Shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
