// internal/observability/metrics.go
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the application registry and every collector the API records to.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthLoginTotal   *prometheus.CounterVec
	AuthSignupTotal  *prometheus.CounterVec
	AuthFailureTotal *prometheus.CounterVec

	ProductViewTotal  *prometheus.CounterVec
	SearchQueryTotal  prometheus.Counter
	CartAddTotal      prometheus.Counter
	CartRemoveTotal   prometheus.Counter
	CartSize          prometheus.Histogram
	CheckoutAttempts  *prometheus.CounterVec
	CheckoutSuccess   prometheus.Counter
	OrderCreatedTotal *prometheus.CounterVec
	OrderFailedTotal  *prometheus.CounterVec
	OrderValue        prometheus.Histogram
	AdminActionTotal  *prometheus.CounterVec

	DatabaseConnectionStatus prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status_code"}),

		AuthLoginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Login attempts by outcome",
		}, []string{"status"}),
		AuthSignupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_signup_total",
			Help: "Signup attempts by outcome",
		}, []string{"status"}),
		AuthFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_failure_total",
			Help: "Authentication failures by reason",
		}, []string{"reason"}),

		ProductViewTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "product_view_total",
			Help: "Product detail views",
		}, []string{"category"}),
		SearchQueryTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "search_query_total",
			Help: "Product searches with a search term",
		}),
		CartAddTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_add_total",
			Help: "Items added to carts",
		}),
		CartRemoveTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_remove_total",
			Help: "Items removed from carts",
		}),
		CartSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cart_size_distribution",
			Help:    "Number of items in a cart after a mutation",
			Buckets: []float64{1, 5, 10, 20, 50},
		}),
		CheckoutAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_attempt_total",
			Help: "Checkout attempts by outcome",
		}, []string{"status"}),
		CheckoutSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkout_success_total",
			Help: "Successful checkouts",
		}),
		OrderCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_created_total",
			Help: "Orders created by initial status",
		}, []string{"status"}),
		OrderFailedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_failed_total",
			Help: "Order placement failures by reason",
		}, []string{"reason"}),
		OrderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "order_value_distribution",
			Help:    "Order total amount",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		}),
		AdminActionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_action_total",
			Help: "Admin mutations by action and resource",
		}, []string{"action", "resource"}),

		DatabaseConnectionStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "database_connection_status",
			Help: "1 when the database answered the last ping, else 0",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthLoginTotal,
		m.AuthSignupTotal,
		m.AuthFailureTotal,
		m.ProductViewTotal,
		m.SearchQueryTotal,
		m.CartAddTotal,
		m.CartRemoveTotal,
		m.CartSize,
		m.CheckoutAttempts,
		m.CheckoutSuccess,
		m.OrderCreatedTotal,
		m.OrderFailedTotal,
		m.OrderValue,
		m.AdminActionTotal,
		m.DatabaseConnectionStatus,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) SetDatabaseUp(up bool) {
	if up {
		m.DatabaseConnectionStatus.Set(1)
		return
	}
	m.DatabaseConnectionStatus.Set(0)
}
