// internal/services/cart_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/utils"
)

// CartService mutates carts with read-modify-write; concurrent writers to the same cart are last-write-wins.
type CartService struct {
	store   repository.Store
	logger  *logrus.Entry
	metrics *observability.Metrics
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func NewCartService(deps Deps) *CartService {
	return &CartService{
		store:   deps.Store,
		logger:  deps.Logger.WithField("component", "cart"),
		metrics: deps.Metrics,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("failed to load cart", err)
	}

	cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	if err := s.store.Carts().Save(ctx, cart); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Internal("failed to create cart", err)
		}
		// Created concurrently by another request.
		return s.reload(ctx, userID)
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *AddToCartRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	productID := uuid.MustParse(req.ProductID)

	product, err := s.availableProduct(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(productID); idx >= 0 {
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.CartAddTotal.Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	}).Info("Item added to cart")

	return s.reload(ctx, userID)
}

// UpdateItem overwrites the quantity of a line; a quantity of zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req *UpdateCartItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	quantity := *req.Quantity
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, apperr.New(apperr.KindNotFound, i18n.KeyCartItemNotFound)
	}

	if _, err := s.availableProduct(ctx, productID, quantity); err != nil {
		return nil, err
	}

	cart.Items[idx].Quantity = quantity
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	}).Info("Cart item updated")

	return s.reload(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(productID); idx >= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		if err := s.save(ctx, cart); err != nil {
			return nil, err
		}
		s.metrics.CartRemoveTotal.Inc()
		s.logger.WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Info("Item removed from cart")
	}

	return s.reload(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items = []models.CartItem{}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", userID).Info("Cart cleared")
	return cart, nil
}

func (s *CartService) availableProduct(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error) {
	product, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyProductNotFound, "failed to load product")
	}
	if !product.IsActive {
		return nil, apperr.New(apperr.KindNotFound, i18n.KeyProductNotFound)
	}
	if product.Stock < quantity {
		return nil, insufficientStock(product)
	}
	return product, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	RecalculateCart(cart)
	if err := s.store.Carts().Save(ctx, cart); err != nil {
		return apperr.Internal("failed to save cart", err)
	}
	s.metrics.CartSize.Observe(float64(cart.TotalItems))
	return nil
}

func (s *CartService) reload(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load cart", err)
	}
	return cart, nil
}

func insufficientStock(product *models.Product) error {
	return &apperr.Error{
		Kind:    apperr.KindInsufficientStock,
		Message: i18n.KeyProductOutOfStock,
		Details: map[string]interface{}{
			"productId": product.ID,
			"name":      product.Name,
			"available": product.Stock,
		},
	}
}
