// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
)

func Initialize(cfg config.DatabaseConfig, logger *logrus.Entry) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: observability.NewGormLogger(logger.WithField("component", "gorm"), cfg.LogLevel),
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB, logger *logrus.Entry) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Error("Error closing database connection")
	} else {
		logger.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB, logger *logrus.Entry) error {
	logger.Info("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db, logger)

	logger.Info("Database migrations completed successfully")
	return nil
}

var indexes = []string{
	// Catalog indexes
	"CREATE INDEX IF NOT EXISTS idx_products_active_created ON products(is_active, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_products_category_price ON products(category_id, price)",
	"CREATE INDEX IF NOT EXISTS idx_products_rating ON products(rating)",

	// Order indexes
	"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",

	// Audit indexes
	"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
	"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
	"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
}

// createIndexes adds the query indexes AutoMigrate cannot express. Failures are logged and skipped.
func createIndexes(db *gorm.DB, logger *logrus.Entry) {
	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logger.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
}
