// internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/javajoker/storefront-api/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate key")
)

type ProductQuery struct {
	CategoryID *uuid.UUID
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64
	Offset     int
	Limit      int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListActive(ctx context.Context) ([]models.Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, query ProductQuery) ([]models.Product, int64, error)
	// IncrementViewCount bumps the counter of an active product and returns the updated row.
	IncrementViewCount(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// DecrementStock subtracts qty only when stock >= qty, else ErrInsufficientStock.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	// Save persists the cart header and replaces its line items.
	Save(ctx context.Context, cart *models.Cart) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Order, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]models.Order, int64, error)
	Update(ctx context.Context, order *models.Order) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Store groups the repositories behind one connection.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Audit() AuditRepository
	// WithTx runs fn against a transactional store; any returned error rolls back every write made through it.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
