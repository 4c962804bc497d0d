// cmd/seed/main.go
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/database"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := observability.NewLogger(cfg, os.Stdout).WithField("component", "seed")

	db, err := database.Initialize(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db, logger)

	if err := database.RunMigrations(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	if err := database.SeedInitialData(context.Background(), repository.NewGormStore(db), cfg, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed database")
	}

	logger.Info("Database seeded successfully")
}
