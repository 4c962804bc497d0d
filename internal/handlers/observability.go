// internal/handlers/observability.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/utils"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ObservabilityHandler struct {
	store     Pinger
	metrics   *observability.Metrics
	cfg       *config.Config
	startedAt time.Time
}

func NewObservabilityHandler(store Pinger, metrics *observability.Metrics, cfg *config.Config, startedAt time.Time) *ObservabilityHandler {
	return &ObservabilityHandler{
		store:     store,
		metrics:   metrics,
		cfg:       cfg,
		startedAt: startedAt,
	}
}

// GET /observability/metrics
func (h *ObservabilityHandler) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// GET /observability/health
func (h *ObservabilityHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, observability.Health(h.startedAt, h.cfg.Environment, h.cfg.Version))
}

// GET /observability/ready
func (h *ObservabilityHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.metrics.SetDatabaseUp(false)
		utils.GetLogger(c).WithError(err).Warn("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"ready":   false,
			"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyDatabaseNotConnected),
		})
		return
	}

	h.metrics.SetDatabaseUp(true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ready":   true,
	})
}

// GET /
func (h *ObservabilityHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "E-commerce API",
		"version": h.cfg.Version,
		"endpoints": gin.H{
			"auth":          "/api/auth",
			"products":      "/api/products",
			"categories":    "/api/categories",
			"cart":          "/api/cart",
			"orders":        "/api/orders",
			"observability": "/observability",
		},
	})
}
