package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository/memory"
	"github.com/javajoker/storefront-api/internal/utils"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			PublicBaseURL: "http://localhost:5000",
			UploadDir:     t.TempDir(),
		},
		JWT:      config.JWTConfig{SecretKey: "test-secret", TTL: time.Hour, Issuer: "test"},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Pricing:  config.PricingConfig{TaxRate: 0.10, FreeShippingThreshold: 100, FlatShippingCost: 10},
		Payment:  config.PaymentConfig{Currency: "usd"},
	}
}

type fixture struct {
	store   *memory.Store
	deps    Deps
	tokens  *utils.TokenManager
	metrics *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	cfg := testConfig(t)
	store := memory.NewStore()
	metrics := observability.NewMetrics()
	return &fixture{
		store: store,
		deps: Deps{
			Store:   store,
			Config:  cfg,
			Logger:  observability.NewNopLogger(),
			Metrics: metrics,
		},
		tokens:  utils.NewTokenManager(cfg.JWT),
		metrics: metrics,
	}
}

func (f *fixture) user(t *testing.T, role models.Role) *models.User {
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     uuid.NewString() + "@example.com",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, user.SetPassword("secret123", bcrypt.MinCost))
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	category := &models.Category{Name: name, Slug: Slugify(name), IsActive: true}
	require.NoError(t, f.store.Categories().Create(context.Background(), category))
	return category
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) *models.Product {
	product := &models.Product{Name: name, Description: name, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, f.store.Products().Create(context.Background(), product))
	return product
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	product, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
