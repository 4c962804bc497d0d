package services

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/utils"
)

type OrderServiceTestSuite struct {
	suite.Suite
	f      *fixture
	carts  *CartService
	orders *OrderService
	ctx    context.Context
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.f = newFixture(suite.T())
	suite.carts = NewCartService(suite.f.deps)
	suite.orders = NewOrderService(suite.f.deps, NewPricing(suite.f.deps.Config.Pricing))
	suite.ctx = context.Background()
}

func (suite *OrderServiceTestSuite) shipping() models.Address {
	return models.Address{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}
}

func (suite *OrderServiceTestSuite) addToCart(user *models.User, product *models.Product, qty int) {
	_, err := suite.carts.AddItem(suite.ctx, user.ID, &AddToCartRequest{ProductID: product.ID.String(), Quantity: intPtr(qty)})
	suite.Require().NoError(err)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderPricesAndDecrements() {
	user := suite.f.user(suite.T(), models.RoleUser)
	lamp := suite.f.product(suite.T(), "Lamp", 10, 5)
	mug := suite.f.product(suite.T(), "Mug", 5, 5)
	suite.addToCart(user, lamp, 2)
	suite.addToCart(user, mug, 1)

	order, err := suite.orders.PlaceOrder(suite.ctx, user, &PlaceOrderRequest{ShippingAddress: suite.shipping()})
	suite.Require().NoError(err)

	suite.Equal(25.0, order.Subtotal)
	suite.Equal(2.5, order.Tax)
	suite.Equal(10.0, order.ShippingCost)
	suite.Equal(37.5, order.TotalAmount)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.Equal(models.PaymentStatusPending, order.PaymentStatus)
	suite.Equal(models.PaymentMethodCreditCard, order.PaymentMethod)
	suite.Equal(suite.shipping(), order.BillingAddress)
	suite.Regexp(regexp.MustCompile(`^ORD-\d+-[A-Z0-9]{9}$`), order.OrderNumber)
	suite.Len(order.Items, 2)

	suite.Equal(3, suite.f.stockOf(suite.T(), lamp.ID))
	suite.Equal(4, suite.f.stockOf(suite.T(), mug.ID))

	cart, err := suite.carts.GetCart(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Empty(cart.Items)
	suite.Equal(0.0, cart.TotalPrice)

	suite.Equal(1.0, testutil.ToFloat64(suite.f.metrics.CheckoutSuccess))
	suite.Equal(1.0, testutil.ToFloat64(suite.f.metrics.OrderCreatedTotal.WithLabelValues("pending")))
}

func (suite *OrderServiceTestSuite) TestPlaceOrderFreeShipping() {
	user := suite.f.user(suite.T(), models.RoleUser)
	desk := suite.f.product(suite.T(), "Desk", 150, 1)
	suite.addToCart(user, desk, 1)

	billing := models.Address{Street: "9 Elm St", City: "Shelbyville", State: "IL", ZipCode: "62565", Country: "US"}
	order, err := suite.orders.PlaceOrder(suite.ctx, user, &PlaceOrderRequest{
		ShippingAddress: suite.shipping(),
		BillingAddress:  &billing,
		PaymentMethod:   models.PaymentMethodPayPal,
	})
	suite.Require().NoError(err)

	suite.Equal(0.0, order.ShippingCost)
	suite.Equal(165.0, order.TotalAmount)
	suite.Equal(billing, order.BillingAddress)
	suite.Equal(models.PaymentMethodPayPal, order.PaymentMethod)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderEmptyCart() {
	user := suite.f.user(suite.T(), models.RoleUser)

	_, err := suite.orders.PlaceOrder(suite.ctx, user, &PlaceOrderRequest{ShippingAddress: suite.shipping()})
	suite.Equal(apperr.KindEmptyCart, apperr.KindOf(err))
	suite.Equal(1.0, testutil.ToFloat64(suite.f.metrics.OrderFailedTotal.WithLabelValues("empty_cart")))
}

func (suite *OrderServiceTestSuite) TestPlaceOrderValidatesAddress() {
	user := suite.f.user(suite.T(), models.RoleUser)
	lamp := suite.f.product(suite.T(), "Lamp", 10, 5)
	suite.addToCart(user, lamp, 1)

	_, err := suite.orders.PlaceOrder(suite.ctx, user, &PlaceOrderRequest{
		ShippingAddress: models.Address{Street: "1 Main St"},
	})
	suite.Equal(apperr.KindValidation, apperr.KindOf(err))

	_, err = suite.orders.PlaceOrder(suite.ctx, user, &PlaceOrderRequest{
		ShippingAddress: suite.shipping(),
		PaymentMethod:   "cash",
	})
	suite.Equal(apperr.KindValidation, apperr.KindOf(err))
	suite.Equal(5, suite.f.stockOf(suite.T(), lamp.ID))
}

func (suite *OrderServiceTestSuite) TestFailingLineRollsBackEverything() {
	user := suite.f.user(suite.T(), models.RoleUser)
	lamp := suite.f.product(suite.T(), "Lamp", 10, 5)
	mug := suite.f.product(suite.T(), "Mug", 5, 5)
	suite.addToCart(user, lamp, 2)
	suite.addToCart(user, mug, 3)

	// Stock drops after the items went into the cart.
	mug.Stock = 1
	suite.Require().NoError(suite.f.store.Products().Update(suite.ctx, mug))

	_, err := suite.orders.PlaceOrder(suite.ctx, user, &PlaceOrderRequest{ShippingAddress: suite.shipping()})
	suite.Equal(apperr.KindInsufficientStock, apperr.KindOf(err))

	suite.Equal(5, suite.f.stockOf(suite.T(), lamp.ID))
	suite.Equal(1, suite.f.stockOf(suite.T(), mug.ID))

	cart, err := suite.carts.GetCart(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Len(cart.Items, 2)
	suite.Equal(5, cart.TotalItems)

	orders, total, err := suite.orders.ListUserOrders(suite.ctx, user.ID, utils.PaginationParams{Page: 1, Limit: 10})
	suite.Require().NoError(err)
	suite.Zero(total)
	suite.Empty(orders)
}

func (suite *OrderServiceTestSuite) TestConcurrentPlacementNeverOversells() {
	product := suite.f.product(suite.T(), "Limited Print", 20, 3)

	const buyers = 8
	users := make([]*models.User, buyers)
	for i := range users {
		users[i] = suite.f.user(suite.T(), models.RoleUser)
		suite.addToCart(users[i], product, 1)
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = suite.orders.PlaceOrder(suite.ctx, users[i], &PlaceOrderRequest{ShippingAddress: suite.shipping()})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		suite.Equal(apperr.KindInsufficientStock, apperr.KindOf(err))
	}

	suite.Equal(3, succeeded)
	suite.Equal(0, suite.f.stockOf(suite.T(), product.ID))
}

func (suite *OrderServiceTestSuite) TestGetOrderAuthorization() {
	owner := suite.f.user(suite.T(), models.RoleUser)
	stranger := suite.f.user(suite.T(), models.RoleUser)
	admin := suite.f.user(suite.T(), models.RoleAdmin)
	lamp := suite.f.product(suite.T(), "Lamp", 10, 5)
	suite.addToCart(owner, lamp, 1)

	order, err := suite.orders.PlaceOrder(suite.ctx, owner, &PlaceOrderRequest{ShippingAddress: suite.shipping()})
	suite.Require().NoError(err)

	got, err := suite.orders.GetOrder(suite.ctx, order.ID, owner)
	suite.Require().NoError(err)
	suite.Equal(order.OrderNumber, got.OrderNumber)

	_, err = suite.orders.GetOrder(suite.ctx, order.ID, stranger)
	suite.Equal(apperr.KindForbidden, apperr.KindOf(err))

	got, err = suite.orders.GetOrder(suite.ctx, order.ID, admin)
	suite.Require().NoError(err)
	suite.Require().NotNil(got.User)
	suite.Equal(owner.Email, got.User.Email)

	_, err = suite.orders.GetOrder(suite.ctx, uuid.New(), owner)
	suite.Equal(apperr.KindNotFound, apperr.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestListOrders() {
	owner := suite.f.user(suite.T(), models.RoleUser)
	other := suite.f.user(suite.T(), models.RoleUser)
	lamp := suite.f.product(suite.T(), "Lamp", 10, 10)

	for _, u := range []*models.User{owner, owner, other} {
		suite.addToCart(u, lamp, 1)
		_, err := suite.orders.PlaceOrder(suite.ctx, u, &PlaceOrderRequest{ShippingAddress: suite.shipping()})
		suite.Require().NoError(err)
	}

	mine, total, err := suite.orders.ListUserOrders(suite.ctx, owner.ID, utils.PaginationParams{Page: 1, Limit: 1})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(mine, 1)

	all, total, err := suite.orders.ListAllOrders(suite.ctx, utils.PaginationParams{Page: 1, Limit: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(all, 3)
	for _, o := range all {
		suite.NotNil(o.User)
	}
	suite.True(!all[0].CreatedAt.Before(all[1].CreatedAt))
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus() {
	owner := suite.f.user(suite.T(), models.RoleUser)
	lamp := suite.f.product(suite.T(), "Lamp", 10, 5)
	suite.addToCart(owner, lamp, 1)
	order, err := suite.orders.PlaceOrder(suite.ctx, owner, &PlaceOrderRequest{ShippingAddress: suite.shipping()})
	suite.Require().NoError(err)

	updated, err := suite.orders.UpdateOrderStatus(suite.ctx, order.ID, models.OrderStatusShipped)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusShipped, updated.Status)

	// No transition graph: any enum value is accepted.
	updated, err = suite.orders.UpdateOrderStatus(suite.ctx, order.ID, models.OrderStatusPending)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusPending, updated.Status)
	suite.Len(updated.Items, 1)

	_, err = suite.orders.UpdateOrderStatus(suite.ctx, order.ID, models.OrderStatus("lost"))
	suite.Equal(apperr.KindInvalidStatus, apperr.KindOf(err))

	_, err = suite.orders.UpdateOrderStatus(suite.ctx, uuid.New(), models.OrderStatusShipped)
	suite.Equal(apperr.KindNotFound, apperr.KindOf(err))
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
