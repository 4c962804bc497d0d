// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/utils"
)

type OrderService struct {
	store   repository.Store
	pricing Pricing
	logger  *logrus.Entry
	metrics *observability.Metrics
	now     func() time.Time
}

type PlaceOrderRequest struct {
	ShippingAddress models.Address  `json:"shippingAddress" validate:"required"`
	BillingAddress  *models.Address `json:"billingAddress" validate:"omitempty"`
	PaymentMethod   string          `json:"paymentMethod" validate:"payment_method"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

func NewOrderService(deps Deps, pricing Pricing) *OrderService {
	return &OrderService{
		store:   deps.Store,
		pricing: pricing,
		logger:  deps.Logger.WithField("component", "orders"),
		metrics: deps.Metrics,
		now:     time.Now,
	}
}

// PlaceOrder converts the user's cart into an order. Stock is decremented
// conditionally inside one store transaction, so any failing line rolls back
// every decrement and leaves the cart untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, user *models.User, req *PlaceOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		s.recordFailure(apperr.KindValidation)
		return nil, validationError(err)
	}

	var order *models.Order
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		cart, err := tx.Carts().FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal("failed to load cart", err)
		}
		if cart == nil || len(cart.Items) == 0 {
			return apperr.New(apperr.KindEmptyCart, i18n.KeyCartEmpty)
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		lines := make([]PriceLine, 0, len(cart.Items))
		for _, line := range cart.Items {
			product, err := tx.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				return notFoundOr(err, i18n.KeyProductNotFound, "failed to load product")
			}
			if !product.IsActive {
				return apperr.New(apperr.KindNotFound, i18n.KeyProductNotFound)
			}

			if err := tx.Products().DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return insufficientStock(product)
				}
				return apperr.Internal("failed to reserve stock", err)
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
			lines = append(lines, PriceLine{Price: line.Price, Quantity: line.Quantity})
		}

		quote := s.pricing.Quote(lines)

		number, err := utils.GenerateOrderNumber(s.now())
		if err != nil {
			return apperr.Internal("failed to generate order number", err)
		}

		billing := req.ShippingAddress
		if req.BillingAddress != nil {
			billing = *req.BillingAddress
		}
		paymentMethod := strings.TrimSpace(req.PaymentMethod)
		if paymentMethod == "" {
			paymentMethod = models.PaymentMethodCreditCard
		}

		order = &models.Order{
			OrderNumber:     number,
			UserID:          user.ID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  billing,
			Subtotal:        quote.Subtotal,
			Tax:             quote.Tax,
			ShippingCost:    quote.Shipping,
			TotalAmount:     quote.Total,
			PaymentMethod:   paymentMethod,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return apperr.Internal("failed to create order", err)
		}

		cart.Items = []models.CartItem{}
		RecalculateCart(cart)
		if err := tx.Carts().Save(ctx, cart); err != nil {
			return apperr.Internal("failed to clear cart", err)
		}
		return nil
	})
	if err != nil {
		s.recordFailure(apperr.KindOf(err))
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Order placement failed")
		return nil, err
	}

	s.metrics.CheckoutAttempts.WithLabelValues("success").Inc()
	s.metrics.CheckoutSuccess.Inc()
	s.metrics.OrderCreatedTotal.WithLabelValues(string(order.Status)).Inc()
	s.metrics.OrderValue.Observe(order.TotalAmount)
	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      user.ID,
		"total":        order.TotalAmount,
		"items":        len(order.Items),
	}).Info("Order created")

	return order, nil
}

func (s *OrderService) recordFailure(kind apperr.Kind) {
	s.metrics.CheckoutAttempts.WithLabelValues("failure").Inc()
	s.metrics.OrderFailedTotal.WithLabelValues(strings.ToLower(kind.String())).Inc()
}

// GetOrder returns the order when the caller owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, caller *models.User) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyOrderNotFound, "failed to load order")
	}

	if order.UserID != caller.ID && !caller.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, i18n.KeyOrderForbidden)
	}
	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, page utils.PaginationParams) ([]models.Order, int64, error) {
	orders, total, err := s.store.Orders().ListByUser(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, total, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, page utils.PaginationParams) ([]models.Order, int64, error) {
	orders, total, err := s.store.Orders().ListAll(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, total, nil
}

// UpdateOrderStatus sets any status in the enum; there is no transition graph.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.New(apperr.KindInvalidStatus, i18n.KeyOrderInvalidStatus)
	}

	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyOrderNotFound, "failed to load order")
	}

	previous := order.Status
	order.Status = status
	if err := s.store.Orders().Update(ctx, order); err != nil {
		return nil, apperr.Internal("failed to update order", err)
	}

	s.metrics.AdminActionTotal.WithLabelValues("update_status", "order").Inc()
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       status,
	}).Info("Order status updated")

	return order, nil
}
