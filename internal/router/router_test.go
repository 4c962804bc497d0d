package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/middleware"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository/memory"
	"github.com/javajoker/storefront-api/internal/services"
	"github.com/javajoker/storefront-api/internal/utils"
)

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Token      string            `json:"token"`
	User       map[string]any    `json:"user"`
	Data       json.RawMessage   `json:"data"`
	Pagination *utils.Pagination `json:"pagination"`
	Errors     json.RawMessage   `json:"errors"`
}

type RouterTestSuite struct {
	suite.Suite
	store   *memory.Store
	tokens  *utils.TokenManager
	metrics *observability.Metrics
	router  *gin.Engine
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		Version:     "test",
		Server:      config.ServerConfig{PublicBaseURL: "http://localhost:5000", UploadDir: suite.T().TempDir()},
		JWT:         config.JWTConfig{SecretKey: "router-secret", TTL: time.Hour, Issuer: "test"},
		Security:    config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		RateLimit:   config.RateLimitConfig{GeneralPerSecond: 1000, GeneralBurst: 1000, AuthPerMinute: 6000, AuthBurst: 1000},
		Pricing:     config.PricingConfig{TaxRate: 0.10, FreeShippingThreshold: 100, FlatShippingCost: 10},
		Payment:     config.PaymentConfig{Currency: "usd"},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"*"}},
		I18n:        config.I18nConfig{DefaultLocale: "en"},
	}

	suite.store = memory.NewStore()
	suite.metrics = observability.NewMetrics()
	suite.tokens = utils.NewTokenManager(cfg.JWT)
	logger := observability.NewNopLogger()

	svc, err := services.New(services.Deps{
		Store:   suite.store,
		Config:  cfg,
		Logger:  logger,
		Metrics: suite.metrics,
	}, suite.tokens, nil)
	suite.Require().NoError(err)

	suite.router = Initialize(Dependencies{
		Config:    cfg,
		Services:  svc,
		Store:     suite.store,
		Metrics:   suite.metrics,
		Logger:    logger,
		Limiters:  middleware.NewRateLimiters(cfg.RateLimit),
		StartedAt: time.Now(),
	})
}

func (suite *RouterTestSuite) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (suite *RouterTestSuite) signup(email string) string {
	w, resp := suite.do(http.MethodPost, "/api/auth/signup", map[string]interface{}{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"email":           email,
		"password":        "secret123",
		"confirmPassword": "secret123",
	}, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return resp.Token
}

func (suite *RouterTestSuite) adminToken() string {
	admin := &models.User{FirstName: "Root", LastName: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}
	suite.Require().NoError(admin.SetPassword("secret123", bcrypt.MinCost))
	suite.Require().NoError(suite.store.Users().Create(context.Background(), admin))

	token, err := suite.tokens.Generate(admin.ID, string(admin.Role))
	suite.Require().NoError(err)
	return token
}

func (suite *RouterTestSuite) createProduct(token, categoryID, name string, price float64, stock int) models.Product {
	w, resp := suite.do(http.MethodPost, "/api/products", map[string]interface{}{
		"name":        name,
		"description": name + " description",
		"price":       price,
		"categoryId":  categoryID,
		"stock":       stock,
	}, token)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var product models.Product
	suite.Require().NoError(json.Unmarshal(resp.Data, &product))
	return product
}

func (suite *RouterTestSuite) TestSignupAndLogin() {
	w, resp := suite.do(http.MethodPost, "/api/auth/signup", map[string]interface{}{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"email":           "Ada@Example.com",
		"password":        "secret123",
		"confirmPassword": "secret123",
	}, "")
	suite.Equal(http.StatusCreated, w.Code)
	suite.True(resp.Success)
	suite.NotEmpty(resp.Token)
	suite.Equal("ada@example.com", resp.User["email"])
	suite.NotContains(w.Body.String(), "password")

	w, resp = suite.do(http.MethodPost, "/api/auth/signup", map[string]interface{}{
		"firstName":       "Ada",
		"lastName":        "Again",
		"email":           "ada@example.com",
		"password":        "secret123",
		"confirmPassword": "secret123",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Email already registered", resp.Message)

	w, resp = suite.do(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email": "ada@example.com", "password": "wrong-password",
	}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Invalid credentials", resp.Message)

	w, resp = suite.do(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email": "ada@example.com", "password": "secret123",
	}, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(resp.Token)

	w, resp = suite.do(http.MethodGet, "/api/auth/me", nil, resp.Token)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Ada", resp.User["firstName"])
}

func (suite *RouterTestSuite) TestSignupValidation() {
	w, resp := suite.do(http.MethodPost, "/api/auth/signup", map[string]interface{}{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"email":           "ada@example.com",
		"password":        "secret123",
		"confirmPassword": "secret321",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.False(resp.Success)
	suite.Equal("Passwords do not match", resp.Message)
	suite.NotEmpty(resp.Errors)
}

func (suite *RouterTestSuite) TestAuthRequired() {
	w, resp := suite.do(http.MethodGet, "/api/cart", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Not authorized to access this route", resp.Message)

	w, _ = suite.do(http.MethodGet, "/api/cart", nil, "garbage")
	suite.Equal(http.StatusUnauthorized, w.Code)

	token := suite.signup("user@example.com")
	w, resp = suite.do(http.MethodPost, "/api/products", map[string]interface{}{"name": "Lamp"}, token)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("User role is not authorized to access this route", resp.Message)
}

func (suite *RouterTestSuite) TestCheckoutFlow() {
	admin := suite.adminToken()

	w, resp := suite.do(http.MethodPost, "/api/categories", map[string]interface{}{"name": "Home Office"}, admin)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	suite.Require().NoError(json.Unmarshal(resp.Data, &category))
	suite.Equal("home-office", category.Slug)

	lamp := suite.createProduct(admin, category.ID.String(), "Lamp", 10, 5)
	mug := suite.createProduct(admin, category.ID.String(), "Mug", 5, 5)

	buyer := suite.signup("buyer@example.com")
	w, _ = suite.do(http.MethodPost, "/api/cart/add", map[string]interface{}{"productId": lamp.ID, "quantity": 2}, buyer)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w, resp = suite.do(http.MethodPost, "/api/cart/add", map[string]interface{}{"productId": mug.ID}, buyer)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var cart models.Cart
	suite.Require().NoError(json.Unmarshal(resp.Data, &cart))
	suite.Equal(3, cart.TotalItems)
	suite.Equal(25.0, cart.TotalPrice)

	w, resp = suite.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"shippingAddress": map[string]string{
			"street": "1 Main St", "city": "Springfield", "state": "IL", "zipCode": "62701", "country": "US",
		},
	}, buyer)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	suite.Require().NoError(json.Unmarshal(resp.Data, &order))
	suite.Equal(25.0, order.Subtotal)
	suite.Equal(2.5, order.Tax)
	suite.Equal(10.0, order.ShippingCost)
	suite.Equal(37.5, order.TotalAmount)
	suite.Equal(models.OrderStatusPending, order.Status)

	w, resp = suite.do(http.MethodGet, "/api/products/"+lamp.ID.String(), nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var stored models.Product
	suite.Require().NoError(json.Unmarshal(resp.Data, &stored))
	suite.Equal(3, stored.Stock)
	suite.Equal(int64(1), stored.ViewCount)

	w, resp = suite.do(http.MethodGet, "/api/cart", nil, buyer)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(resp.Data, &cart))
	suite.Empty(cart.Items)

	w, resp = suite.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"shippingAddress": map[string]string{
			"street": "1 Main St", "city": "Springfield", "state": "IL", "zipCode": "62701", "country": "US",
		},
	}, buyer)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Cart is empty", resp.Message)

	w, resp = suite.do(http.MethodGet, "/api/orders/user/orders", nil, buyer)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NotNil(resp.Pagination)
	suite.Equal(int64(1), resp.Pagination.Total)
	suite.Equal(10, resp.Pagination.Limit)

	stranger := suite.signup("stranger@example.com")
	w, resp = suite.do(http.MethodGet, "/api/orders/"+order.ID.String(), nil, stranger)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("Not authorized to view this order", resp.Message)

	w, _ = suite.do(http.MethodGet, "/api/orders/"+order.ID.String(), nil, admin)
	suite.Equal(http.StatusOK, w.Code)

	w, resp = suite.do(http.MethodPut, "/api/orders/"+order.ID.String()+"/status", map[string]string{"status": "lost"}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid order status", resp.Message)

	w, resp = suite.do(http.MethodPut, "/api/orders/"+order.ID.String()+"/status", map[string]string{"status": "shipped"}, admin)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(resp.Data, &order))
	suite.Equal(models.OrderStatusShipped, order.Status)

	w, resp = suite.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/payment-intent", nil, buyer)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Payments are not configured", resp.Message)

	suite.Eventually(func() bool {
		return len(suite.store.AuditEntries()) == 4
	}, time.Second, 10*time.Millisecond)
}

func (suite *RouterTestSuite) TestInsufficientStockDetails() {
	admin := suite.adminToken()
	w, resp := suite.do(http.MethodPost, "/api/categories", map[string]interface{}{"name": "Lighting"}, admin)
	suite.Require().Equal(http.StatusCreated, w.Code)
	var category models.Category
	suite.Require().NoError(json.Unmarshal(resp.Data, &category))

	lamp := suite.createProduct(admin, category.ID.String(), "Lamp", 10, 1)
	buyer := suite.signup("buyer@example.com")

	w, resp = suite.do(http.MethodPost, "/api/cart/add", map[string]interface{}{"productId": lamp.ID, "quantity": 2}, buyer)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Insufficient stock", resp.Message)

	var details map[string]interface{}
	suite.Require().NoError(json.Unmarshal(resp.Errors, &details))
	suite.Equal(1.0, details["available"])
}

func (suite *RouterTestSuite) TestUpdateCartItemRequiresQuantity() {
	admin := suite.adminToken()
	w, resp := suite.do(http.MethodPost, "/api/categories", map[string]interface{}{"name": "Lighting"}, admin)
	suite.Require().Equal(http.StatusCreated, w.Code)
	var category models.Category
	suite.Require().NoError(json.Unmarshal(resp.Data, &category))

	lamp := suite.createProduct(admin, category.ID.String(), "Lamp", 10, 5)
	buyer := suite.signup("buyer@example.com")

	w, _ = suite.do(http.MethodPost, "/api/cart/add", map[string]interface{}{"productId": lamp.ID, "quantity": 2}, buyer)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, resp = suite.do(http.MethodPut, "/api/cart/"+lamp.ID.String(), map[string]interface{}{}, buyer)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("quantity is required", resp.Message)

	w, resp = suite.do(http.MethodGet, "/api/cart", nil, buyer)
	suite.Require().Equal(http.StatusOK, w.Code)
	var cart models.Cart
	suite.Require().NoError(json.Unmarshal(resp.Data, &cart))
	suite.Len(cart.Items, 1)
	suite.Equal(2, cart.TotalItems)

	w, resp = suite.do(http.MethodPut, "/api/cart/"+lamp.ID.String(), map[string]interface{}{"quantity": 0}, buyer)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(resp.Data, &cart))
	suite.Empty(cart.Items)
}

func (suite *RouterTestSuite) TestProductListing() {
	admin := suite.adminToken()
	w, resp := suite.do(http.MethodPost, "/api/categories", map[string]interface{}{"name": "Kitchen"}, admin)
	suite.Require().Equal(http.StatusCreated, w.Code)
	var category models.Category
	suite.Require().NoError(json.Unmarshal(resp.Data, &category))

	for _, name := range []string{"Kettle", "Toaster", "Whisk"} {
		suite.createProduct(admin, category.ID.String(), name, 20, 3)
	}

	w, resp = suite.do(http.MethodGet, "/api/products?category=kitchen&limit=2&page=2", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NotNil(resp.Pagination)
	suite.Equal(utils.Pagination{Page: 2, Limit: 2, Total: 3, Pages: 2}, *resp.Pagination)

	var products []models.Product
	suite.Require().NoError(json.Unmarshal(resp.Data, &products))
	suite.Len(products, 1)

	w, _ = suite.do(http.MethodGet, "/api/products/"+uuid.NewString(), nil, "")
	suite.Equal(http.StatusNotFound, w.Code)

	w, resp = suite.do(http.MethodGet, "/api/products/not-a-uuid", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Product not found", resp.Message)

	w, resp = suite.do(http.MethodGet, "/api/products?page=9223372036854775807", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(resp.Data, &products))
	suite.Empty(products)
	suite.Equal(int64(3), resp.Pagination.Total)
}

func (suite *RouterTestSuite) TestNoRouteIsLocalized() {
	w, resp := suite.do(http.MethodGet, "/api/nothing-here", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Route not found", resp.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Contains(rec.Body.String(), "找不到路由")
}

func (suite *RouterTestSuite) TestObservabilityEndpoints() {
	w, _ := suite.do(http.MethodGet, "/observability/health", nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var health observability.HealthReport
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &health))
	suite.Equal("OK", health.Status)
	suite.Equal("test", health.Environment)

	w, _ = suite.do(http.MethodGet, "/observability/ready", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	suite.store.PingErr = errors.New("connection refused")
	w, resp := suite.do(http.MethodGet, "/observability/ready", nil, "")
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.False(resp.Success)
	suite.Equal("Database not connected", resp.Message)

	w, _ = suite.do(http.MethodGet, "/observability/metrics", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `http_requests_total{method="GET",route="/observability/ready",status_code="200"} 1`)
	suite.Contains(w.Body.String(), "database_connection_status 0")

	w, _ = suite.do(http.MethodGet, "/", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "/api/products")
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
