// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/database"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/middleware"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/router"
	"github.com/javajoker/storefront-api/internal/services"
	"github.com/javajoker/storefront-api/internal/utils"
)

const databaseProbeInterval = 15 * time.Second

func main() {
	startedAt := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	metrics := observability.NewMetrics()

	// Initialize database
	db, err := database.Initialize(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db, logger)

	// Run database migrations
	if err := database.RunMigrations(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize i18n")
	}

	store := repository.NewGormStore(db)

	var gateway services.PaymentGateway
	if cfg.Payment.StripeSecretKey != "" {
		gateway = services.NewStripeGateway(cfg.Payment.StripeSecretKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, payment endpoints are disabled")
	}

	svc, err := services.New(services.Deps{
		Store:   store,
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
	}, utils.NewTokenManager(cfg.JWT), gateway)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize services")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiters := middleware.NewRateLimiters(cfg.RateLimit)
	go limiters.Run(ctx)
	go watchDatabase(ctx, store, metrics, logger)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(router.Dependencies{
		Config:    cfg,
		Services:  svc,
		Store:     store,
		Metrics:   metrics,
		Logger:    logger,
		Limiters:  limiters,
		StartedAt: startedAt,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.Environment,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// watchDatabase keeps the database_connection_status gauge current.
func watchDatabase(ctx context.Context, store repository.Store, metrics *observability.Metrics, logger *logrus.Entry) {
	ticker := time.NewTicker(databaseProbeInterval)
	defer ticker.Stop()

	up := true
	metrics.SetDatabaseUp(up)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := store.Ping(pingCtx)
			cancel()

			if (err == nil) != up {
				up = err == nil
				if up {
					logger.Info("Database connection restored")
				} else {
					logger.WithError(err).Error("Database connection lost")
				}
			}
			metrics.SetDatabaseUp(up)
		}
	}
}
