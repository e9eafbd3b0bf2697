// Package main is the entry point for the Zakat Tracker API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/zakat-tracker/backend/config"
	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/infra/cache"
	"github.com/zakat-tracker/backend/internal/infra/db"
	"github.com/zakat-tracker/backend/internal/infra/dependency"
	"github.com/zakat-tracker/backend/internal/integration/email"
	"github.com/zakat-tracker/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Zakat Tracker API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	var gormDB *gorm.DB
	var dbHealthChecker func() bool

	if cfg.Database.URL == "" {
		slog.Warn("DATABASE_URL is empty, running without database")
	} else if database, err := db.NewConnection(&cfg.Database); err != nil {
		slog.Warn("Database connection failed, running without database",
			"error", err,
		)
	} else {
		// Run database migrations
		if err := database.AutoMigrate(model.All()...); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed successfully")

		gormDB = database.DB()
		dbHealthChecker = database.HealthCheck
		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}()
	}

	// Initialize Redis for the per-user lock
	var redisClient *redis.Client
	var cacheHealthChecker func() bool

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisConnection(&cfg.Redis)
		if err != nil {
			slog.Warn("Redis connection failed, running without user lock",
				"error", err,
			)
		} else {
			redisClient = rdb.Client()
			cacheHealthChecker = rdb.HealthCheck
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close redis connection", "error", err)
				}
			}()
		}
	}

	// Email sender is only configured with an API key
	var sender adapter.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		resendClient := email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
		if cfg.Email.ResendBaseURL != "" {
			if err := resendClient.SetBaseURL(cfg.Email.ResendBaseURL); err != nil {
				slog.Error("Invalid Resend base URL", "error", err)
				os.Exit(1)
			}
		}
		sender = resendClient
	} else {
		slog.Warn("RESEND_API_KEY is empty, zakat due emails stay queued")
	}

	// Wire dependencies
	injector := dependency.NewInjector(cfg, dependency.Options{
		DB:          gormDB,
		Redis:       redisClient,
		Sender:      sender,
		DBHealth:    dbHealthChecker,
		CacheHealth: cacheHealthChecker,
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if injector.EmailWorker != nil && cfg.Email.WorkerEnabled {
		go injector.EmailWorker.Start(workerCtx)
	}
	go injector.RateLimiter.StartCleanup(workerCtx)

	// Setup router
	engine := injector.Router.Setup(cfg.Server.Environment)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
