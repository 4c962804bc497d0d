// internal/database/seed.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/repository"
)

type seedProduct struct {
	category      string
	name          string
	description   string
	price         float64
	originalPrice float64
	image         string
	stock         int
	rating        float64
	sku           string
	tags          []string
}

var seedCategories = []models.Category{
	{Name: "Electronics", Description: "Electronic devices and gadgets", Slug: "electronics"},
	{Name: "Laptops & Computers", Description: "Laptops, desktops, and computer accessories", Slug: "laptops-computers"},
	{Name: "Smartphones", Description: "Mobile phones and accessories", Slug: "smartphones"},
	{Name: "Headphones & Audio", Description: "Headphones, speakers, and audio equipment", Slug: "headphones-audio"},
	{Name: "Cameras", Description: "Digital cameras and photography equipment", Slug: "cameras"},
	{Name: "Wearables", Description: "Smartwatches, fitness trackers, and wearable devices", Slug: "wearables"},
}

var seedProducts = []seedProduct{
	{
		category: "laptops-computers", name: `MacBook Pro 16" M3 Max`,
		description: "Powerful laptop with M3 Max chip, 16GB RAM, 512GB SSD. Perfect for professionals and developers.",
		price:       2499.99, originalPrice: 2999.99, stock: 25, rating: 4.8, sku: "MBPRO-16-M3",
		image: "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=500&h=500&fit=crop",
		tags:  []string{"laptop", "apple", "professional"},
	},
	{
		category: "laptops-computers", name: "Dell XPS 15 Laptop",
		description: "High-performance laptop with Intel i7, RTX 4060, 16GB RAM, 512GB SSD. Great for gaming and work.",
		price:       1799.99, originalPrice: 2099.99, stock: 30, rating: 4.6, sku: "DELL-XPS-15",
		image: "https://images.unsplash.com/photo-1588872657840-790ff3bde08c?w=500&h=500&fit=crop",
		tags:  []string{"laptop", "dell", "gaming"},
	},
	{
		category: "smartphones", name: "iPhone 15 Pro Max",
		description: "Latest iPhone with A17 Pro chip, 48MP camera, titanium design. 256GB storage.",
		price:       1199.99, originalPrice: 1299.99, stock: 50, rating: 4.9, sku: "IPHONE-15PM-256",
		image: "https://images.unsplash.com/photo-1592286927505-1def25115558?w=500&h=500&fit=crop",
		tags:  []string{"smartphone", "apple", "latest"},
	},
	{
		category: "smartphones", name: "Samsung Galaxy S24 Ultra",
		description: "Premium Android flagship with Snapdragon 8 Gen 3, 200MP camera, 12GB RAM.",
		price:       1299.99, originalPrice: 1399.99, stock: 40, rating: 4.7, sku: "SAMSUNG-S24U",
		image: "https://images.unsplash.com/photo-1511707267537-b85faf00021e?w=500&h=500&fit=crop",
		tags:  []string{"smartphone", "samsung", "flagship"},
	},
	{
		category: "headphones-audio", name: "Sony WH-1000XM5 Headphones",
		description: "Industry-leading noise cancelling wireless headphones with 30-hour battery life.",
		price:       399.99, originalPrice: 449.99, stock: 60, rating: 4.8, sku: "SONY-WH1000XM5",
		image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop",
		tags:  []string{"headphones", "sony", "wireless"},
	},
	{
		category: "cameras", name: "Canon EOS R6 Mark II",
		description: "Full-frame mirrorless camera with 24.2MP sensor and 4K 60p video.",
		price:       2499.99, originalPrice: 2699.99, stock: 15, rating: 4.7, sku: "CANON-R6M2",
		image: "https://images.unsplash.com/photo-1516035069371-29a1b244cc32?w=500&h=500&fit=crop",
		tags:  []string{"camera", "canon", "mirrorless"},
	},
	{
		category: "wearables", name: "Apple Watch Series 9",
		description: "Advanced smartwatch with S9 chip, always-on Retina display and health tracking.",
		price:       399.99, originalPrice: 429.99, stock: 45, rating: 4.6, sku: "APPLE-WATCH-S9",
		image: "https://images.unsplash.com/photo-1434493789847-2f02dc6ca35d?w=500&h=500&fit=crop",
		tags:  []string{"smartwatch", "apple", "fitness"},
	},
	{
		category: "electronics", name: "Anker PowerCore 20000",
		description: "High-capacity portable charger with fast charging for phones and tablets.",
		price:       49.99, originalPrice: 59.99, stock: 120, rating: 4.5, sku: "ANKER-PC-20K",
		image: "https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=500&h=500&fit=crop",
		tags:  []string{"charger", "anker", "portable"},
	},
}

// SeedInitialData creates the default categories, the sample catalog and the admin user.
// It is idempotent: existing categories, products and users are left alone.
func SeedInitialData(ctx context.Context, store repository.Store, cfg *config.Config, logger *logrus.Entry) error {
	logger.Info("Seeding initial data...")

	return store.WithTx(ctx, func(tx repository.Store) error {
		slugs := make(map[string]*models.Category, len(seedCategories))
		for _, seed := range seedCategories {
			category, err := tx.Categories().FindBySlug(ctx, seed.Slug)
			if errors.Is(err, repository.ErrNotFound) {
				category = &models.Category{Name: seed.Name, Description: seed.Description, Slug: seed.Slug, IsActive: true}
				err = tx.Categories().Create(ctx, category)
			}
			if err != nil {
				return fmt.Errorf("failed to seed category %s: %w", seed.Slug, err)
			}
			slugs[seed.Slug] = category
		}
		logger.WithField("count", len(slugs)).Info("Categories ready")

		_, total, err := tx.Products().List(ctx, repository.ProductQuery{Limit: 1})
		if err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if total == 0 {
			for _, seed := range seedProducts {
				originalPrice := seed.originalPrice
				product := &models.Product{
					Name:          seed.name,
					Description:   seed.description,
					Price:         seed.price,
					OriginalPrice: &originalPrice,
					CategoryID:    slugs[seed.category].ID,
					Images:        models.ProductImages{{URL: seed.image, Alt: seed.name}},
					Stock:         seed.stock,
					Rating:        seed.rating,
					SKU:           seed.sku,
					Tags:          seed.tags,
					IsActive:      true,
				}
				if err := tx.Products().Create(ctx, product); err != nil {
					return fmt.Errorf("failed to seed product %s: %w", seed.sku, err)
				}
			}
			logger.WithField("count", len(seedProducts)).Info("Products created")
		}

		return seedAdmin(ctx, tx, cfg, logger)
	})
}

func seedAdmin(ctx context.Context, tx repository.Store, cfg *config.Config, logger *logrus.Entry) error {
	email := strings.ToLower(cfg.Seed.AdminEmail)
	if email == "" || cfg.Seed.AdminPassword == "" {
		logger.Warn("Admin credentials not configured, skipping admin user")
		return nil
	}

	if _, err := tx.Users().FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	admin := &models.User{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     email,
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := admin.SetPassword(cfg.Seed.AdminPassword, cfg.Security.BcryptCost); err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}
	if err := tx.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.WithField("email", email).Info("Default admin user created successfully")
	return nil
}
