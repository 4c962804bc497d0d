// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/handlers"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/middleware"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/services"
	"github.com/javajoker/storefront-api/internal/utils"
)

// Dependencies are the process-scoped values the routes are built from.
type Dependencies struct {
	Config    *config.Config
	Services  *services.Services
	Store     repository.Store
	Metrics   *observability.Metrics
	Logger    *logrus.Entry
	Limiters  *middleware.RateLimiters
	StartedAt time.Time
}

func Initialize(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	svc := deps.Services

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Auth)
	productHandler := handlers.NewProductHandler(svc.Products)
	categoryHandler := handlers.NewCategoryHandler(svc.Category)
	cartHandler := handlers.NewCartHandler(svc.Cart)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments)
	observabilityHandler := handlers.NewObservabilityHandler(deps.Store, deps.Metrics, cfg, deps.StartedAt)

	authRequired := middleware.AuthRequired(svc.Auth)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.AdminRequired(), middleware.AuditLog(deps.Store.Audit())}

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(deps.Limiters.General.Middleware())

	r.GET("/", observabilityHandler.Index)

	// Locally stored product images
	if cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", cfg.Server.UploadDir)
	}

	obs := r.Group("/observability")
	{
		obs.GET("/metrics", observabilityHandler.Metrics)
		obs.GET("/health", observabilityHandler.Health)
		obs.GET("/ready", observabilityHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Authentication routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", deps.Limiters.Auth.Middleware(), authHandler.Signup)
			auth.POST("/login", deps.Limiters.Auth.Middleware(), authHandler.Login)
			auth.GET("/me", authRequired, authHandler.GetProfile)
			auth.PUT("/me", authRequired, authHandler.UpdateProfile)
		}

		// Product routes
		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)

			admin := products.Group("", adminOnly...)
			{
				admin.POST("", productHandler.CreateProduct)
				admin.PUT("/:id", productHandler.UpdateProduct)
				admin.DELETE("/:id", productHandler.DeleteProduct)
				admin.POST("/:id/images", deps.Limiters.Upload.Middleware(), productHandler.UploadImages)
			}
		}

		// Category routes
		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)

			admin := categories.Group("", adminOnly...)
			{
				admin.POST("", categoryHandler.CreateCategory)
				admin.PUT("/:id", categoryHandler.UpdateCategory)
			}
		}

		// Cart routes
		cart := api.Group("/cart")
		cart.Use(authRequired)
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/add", cartHandler.AddItem)
			cart.PUT("/:productId", cartHandler.UpdateItem)
			cart.DELETE("/:productId", cartHandler.RemoveItem)
			cart.DELETE("", cartHandler.ClearCart)
		}

		// Order routes
		orders := api.Group("/orders")
		{
			orders.POST("", authRequired, orderHandler.PlaceOrder)
			orders.GET("/user/orders", authRequired, orderHandler.GetUserOrders)
			orders.GET("/:id", authRequired, orderHandler.GetOrder)
			orders.POST("/:id/payment-intent", authRequired, paymentHandler.CreatePaymentIntent)
			orders.POST("/:id/payment-confirm", authRequired, paymentHandler.ConfirmPayment)

			admin := orders.Group("", adminOnly...)
			{
				admin.GET("", orderHandler.GetAllOrders)
				admin.PUT("/:id/status", orderHandler.UpdateOrderStatus)
				admin.POST("/:id/refund", paymentHandler.RefundOrder)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, i18n.KeyRouteNotFound, nil)
	})

	return r
}
