package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIndependentPerInstance(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.CartAddTotal.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CartAddTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CartAddTotal))
}

func TestHandlerExposesApplicationMetrics(t *testing.T) {
	m := NewMetrics()
	m.AuthLoginTotal.WithLabelValues("success").Inc()
	m.SetDatabaseUp(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `auth_login_total{status="success"} 1`)
	assert.Contains(t, body, "database_connection_status 1")
	assert.Contains(t, body, "go_goroutines")
}

func TestHealthReport(t *testing.T) {
	report := Health(time.Now().Add(-time.Minute), "test", "1.0.0")

	assert.Equal(t, "OK", report.Status)
	assert.GreaterOrEqual(t, report.Uptime, 60.0)
	assert.Equal(t, "test", report.Environment)
	assert.Positive(t, report.CPUCores)
}
