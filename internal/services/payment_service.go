// internal/services/payment_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
)

// PaymentIntent is the gateway-neutral view of a card payment.
type PaymentIntent struct {
	ID           string `json:"paymentId"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentGateway is implemented by StripeGateway and by fakes in tests.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
	Refund(ctx context.Context, intentID string, amount int64) error
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amount),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx

	if _, err := g.api.Refunds.New(params); err != nil {
		return fmt.Errorf("failed to process refund: %w", err)
	}
	return nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}

type PaymentService struct {
	store    repository.Store
	gateway  PaymentGateway
	currency string
	logger   *logrus.Entry
	metrics  *observability.Metrics
}

func NewPaymentService(deps Deps, gateway PaymentGateway) *PaymentService {
	return &PaymentService{
		store:    deps.Store,
		gateway:  gateway,
		currency: deps.Config.Payment.Currency,
		logger:   deps.Logger.WithField("component", "payments"),
		metrics:  deps.Metrics,
	}
}

// CreatePaymentIntent starts a card payment for the order total.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, orderID uuid.UUID, caller *models.User) (*PaymentIntent, error) {
	order, err := s.ownedOrder(ctx, orderID, caller)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperr.New(apperr.KindValidation, i18n.KeyPaymentAlreadyPaid)
	}

	intent, err := s.gateway.CreateIntent(ctx, toCents(order.TotalAmount), s.currency, map[string]string{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"user_id":      order.UserID.String(),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, i18n.KeyPaymentFailed, err)
	}

	order.PaymentReference = intent.ID
	if err := s.store.Orders().Update(ctx, order); err != nil {
		return nil, apperr.Internal("failed to store payment reference", err)
	}

	s.logger.WithFields(logrus.Fields{"order_id": order.ID, "payment_id": intent.ID}).Info("Payment intent created")
	return intent, nil
}

// ConfirmPayment syncs the order with the gateway's view of its payment.
func (s *PaymentService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, caller *models.User) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, caller)
	if err != nil {
		return nil, err
	}
	if order.PaymentReference == "" {
		return nil, apperr.New(apperr.KindValidation, i18n.KeyPaymentNoIntent)
	}

	intent, err := s.gateway.GetIntent(ctx, order.PaymentReference)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, i18n.KeyPaymentFailed, err)
	}

	switch stripe.PaymentIntentStatus(intent.Status) {
	case stripe.PaymentIntentStatusSucceeded:
		order.PaymentStatus = models.PaymentStatusPaid
		if order.Status == models.OrderStatusPending {
			order.Status = models.OrderStatusConfirmed
		}
	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusProcessing:
		order.PaymentStatus = models.PaymentStatusPending
	default:
		order.PaymentStatus = models.PaymentStatusFailed
	}

	if err := s.store.Orders().Update(ctx, order); err != nil {
		return nil, apperr.Internal("failed to update order", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
	}).Info("Payment confirmed")
	return order, nil
}

// RefundOrder returns a paid order's total to the customer and cancels the order.
func (s *PaymentService) RefundOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.gateway == nil {
		return nil, apperr.New(apperr.KindValidation, i18n.KeyPaymentNotConfigured)
	}

	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyOrderNotFound, "failed to load order")
	}
	if order.PaymentStatus != models.PaymentStatusPaid || order.PaymentReference == "" {
		return nil, apperr.New(apperr.KindValidation, i18n.KeyPaymentNoIntent)
	}

	if err := s.gateway.Refund(ctx, order.PaymentReference, toCents(order.TotalAmount)); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, i18n.KeyPaymentFailed, err)
	}

	order.PaymentStatus = models.PaymentStatusRefunded
	order.Status = models.OrderStatusCancelled
	if err := s.store.Orders().Update(ctx, order); err != nil {
		return nil, apperr.Internal("failed to update order", err)
	}

	s.metrics.AdminActionTotal.WithLabelValues("refund", "order").Inc()
	s.logger.WithField("order_id", order.ID).Info("Order refunded")
	return order, nil
}

func (s *PaymentService) ownedOrder(ctx context.Context, orderID uuid.UUID, caller *models.User) (*models.Order, error) {
	if s.gateway == nil {
		return nil, apperr.New(apperr.KindValidation, i18n.KeyPaymentNotConfigured)
	}

	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyOrderNotFound, "failed to load order")
	}
	if order.UserID != caller.ID {
		return nil, apperr.New(apperr.KindForbidden, i18n.KeyOrderForbidden)
	}
	return order, nil
}
