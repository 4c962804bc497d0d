// internal/repository/memory/store.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/repository"
)

// Store is an in-memory repository.Store used by tests.
// Values are copied on the way in and out so callers never share state with the store.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users      map[uuid.UUID]models.User
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
	carts      map[uuid.UUID]models.Cart // keyed by user id
	orders     map[uuid.UUID]models.Order
	audit      []models.AuditLog

	// PingErr is returned by Ping when set.
	PingErr error
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]models.User),
		categories: make(map[uuid.UUID]models.Category),
		products:   make(map[uuid.UUID]models.Product),
		carts:      make(map[uuid.UUID]models.Cart),
		orders:     make(map[uuid.UUID]models.Order),
	}
}

func (s *Store) Users() repository.UserRepository          { return userRepository{s} }
func (s *Store) Categories() repository.CategoryRepository { return categoryRepository{s} }
func (s *Store) Products() repository.ProductRepository    { return productRepository{s} }
func (s *Store) Carts() repository.CartRepository          { return cartRepository{s} }
func (s *Store) Orders() repository.OrderRepository        { return orderRepository{s} }
func (s *Store) Audit() repository.AuditRepository         { return auditRepository{s} }

func (s *Store) Ping(ctx context.Context) error {
	return s.PingErr
}

// WithTx serializes transactions and restores a snapshot when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(txStore{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// AuditEntries returns a copy of the audit trail.
func (s *Store) AuditEntries() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audit...)
}

type txStore struct {
	*Store
}

func (t txStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

type snapshot struct {
	users      map[uuid.UUID]models.User
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
	carts      map[uuid.UUID]models.Cart
	orders     map[uuid.UUID]models.Order
	audit      []models.AuditLog
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		users:      make(map[uuid.UUID]models.User, len(s.users)),
		categories: make(map[uuid.UUID]models.Category, len(s.categories)),
		products:   make(map[uuid.UUID]models.Product, len(s.products)),
		carts:      make(map[uuid.UUID]models.Cart, len(s.carts)),
		orders:     make(map[uuid.UUID]models.Order, len(s.orders)),
		audit:      append([]models.AuditLog(nil), s.audit...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.categories {
		snap.categories[k] = v
	}
	for k, v := range s.products {
		snap.products[k] = copyProduct(v)
	}
	for k, v := range s.carts {
		snap.carts[k] = copyCart(v)
	}
	for k, v := range s.orders {
		snap.orders[k] = copyOrder(v)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.categories = snap.categories
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.audit = snap.audit
}

func stamp(base *models.BaseModel) {
	now := time.Now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func copyProduct(p models.Product) models.Product {
	p.Images = append(models.ProductImages(nil), p.Images...)
	p.Tags = append([]string(nil), p.Tags...)
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		p.OriginalPrice = &v
	}
	p.Category = nil
	return p
}

func copyCart(c models.Cart) models.Cart {
	items := make([]models.CartItem, len(c.Items))
	for i, item := range c.Items {
		item.Product = nil
		items[i] = item
	}
	c.Items = items
	return c
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	o.User = nil
	return o
}
