// internal/repository/memory/repositories.go
package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/repository"
)

type userRepository struct{ s *Store }

func (r userRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	stamp(&user.BaseModel)
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepository) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	stamp(&user.BaseModel)
	r.s.users[user.ID] = *user
	return nil
}

type categoryRepository struct{ s *Store }

func (r categoryRepository) Create(ctx context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.categories {
		if existing.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	stamp(&category.BaseModel)
	r.s.categories[category.ID] = *category
	return nil
}

func (r categoryRepository) Update(ctx context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.categories {
		if id != category.ID && existing.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	stamp(&category.BaseModel)
	r.s.categories[category.ID] = *category
	return nil
}

func (r categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	category, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &category, nil
}

func (r categoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, category := range r.s.categories {
		if category.Slug == slug {
			c := category
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r categoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Category
	for _, category := range r.s.categories {
		if category.IsActive {
			out = append(out, category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type productRepository struct{ s *Store }

func (r productRepository) Create(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stamp(&product.BaseModel)
	r.s.products[product.ID] = copyProduct(*product)
	return nil
}

func (r productRepository) Update(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	stamp(&product.BaseModel)
	r.s.products[product.ID] = copyProduct(*product)
	return nil
}

func (r productRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	product, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withCategory(product), nil
}

func (r productRepository) List(ctx context.Context, q repository.ProductQuery) ([]models.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(q.Search))

	var matched []models.Product
	for _, p := range r.s.products {
		if !p.IsActive {
			continue
		}
		if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if q.MinPrice != nil && p.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		if q.MinRating != nil && p.Rating < *q.MinRating {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	out := make([]models.Product, 0, max(q.Limit, 0))
	for i := max(q.Offset, 0); i < len(matched) && (q.Limit <= 0 || len(out) < q.Limit); i++ {
		out = append(out, *r.withCategory(matched[i]))
	}
	return out, total, nil
}

func matchesSearch(p models.Product, search string) bool {
	if strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func (r productRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product, ok := r.s.products[id]
	if !ok || !product.IsActive {
		return nil, repository.ErrNotFound
	}
	product.ViewCount++
	r.s.products[id] = product
	return r.withCategory(product), nil
}

func (r productRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product, ok := r.s.products[id]
	if !ok || product.Stock < qty {
		return repository.ErrInsufficientStock
	}
	product.Stock -= qty
	r.s.products[id] = product
	return nil
}

// withCategory must be called with the lock held.
func (r productRepository) withCategory(p models.Product) *models.Product {
	out := copyProduct(p)
	if category, ok := r.s.categories[p.CategoryID]; ok {
		out.Category = &category
	}
	return &out
}

type cartRepository struct{ s *Store }

func (r cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cart, ok := r.s.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyCart(cart)
	for i := range out.Items {
		if product, ok := r.s.products[out.Items[i].ProductID]; ok {
			p := copyProduct(product)
			out.Items[i].Product = &p
		}
	}
	return &out, nil
}

func (r cartRepository) Save(ctx context.Context, cart *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.carts[cart.UserID]; ok && existing.ID != cart.ID && cart.ID != uuid.Nil {
		return repository.ErrDuplicate
	}
	stamp(&cart.BaseModel)
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
		stamp(&cart.Items[i].BaseModel)
	}
	r.s.carts[cart.UserID] = copyCart(*cart)
	return nil
}

type orderRepository struct{ s *Store }

func (r orderRepository) Create(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	stamp(&order.BaseModel)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		stamp(&order.Items[i].BaseModel)
	}
	r.s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (r orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withUser(order), nil
}

func (r orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Order, int64, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }, offset, limit, false)
}

func (r orderRepository) ListAll(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	return r.list(func(models.Order) bool { return true }, offset, limit, true)
}

func (r orderRepository) list(keep func(models.Order) bool, offset, limit int, withUser bool) ([]models.Order, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []models.Order
	for _, o := range r.s.orders {
		if keep(o) {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	out := make([]models.Order, 0, max(limit, 0))
	for i := max(offset, 0); i < len(matched) && (limit <= 0 || len(out) < limit); i++ {
		if withUser {
			out = append(out, *r.withUser(matched[i]))
		} else {
			out = append(out, copyOrder(matched[i]))
		}
	}
	return out, int64(len(matched)), nil
}

func (r orderRepository) Update(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.orders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := copyOrder(*order)
	updated.Items = existing.Items
	updated.UpdatedAt = time.Now()
	r.s.orders[order.ID] = updated
	order.UpdatedAt = updated.UpdatedAt
	return nil
}

// withUser must be called with the lock held.
func (r orderRepository) withUser(o models.Order) *models.Order {
	out := copyOrder(o)
	if user, ok := r.s.users[o.UserID]; ok {
		out.User = &user
	}
	return &out
}

type auditRepository struct{ s *Store }

func (r auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stamp(&entry.BaseModel)
	r.s.audit = append(r.s.audit, *entry)
	return nil
}
