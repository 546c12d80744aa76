package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func metricsRouter() *gin.Engine {
	router := gin.New()
	router.Use(Metrics())
	router.GET("/products/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})
	router.POST("/products", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, "# metrics")
	})
	return router
}

func TestMetrics_CountsByRoute(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		route  string
		status string
	}{
		{"RouteTemplate", http.MethodGet, "/products/7", "/products/:id", "200"},
		{"Created", http.MethodPost, "/products", "/products", "201"},
		{"Unmatched", http.MethodGet, "/nowhere/42", unmatchedRoute, "404"},
	}

	router := metricsRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := httpRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status)
			before := testutil.ToFloat64(counter)

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestMetrics_RawPathNotALabel(t *testing.T) {
	router := metricsRouter()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/12345", nil))

	assert.Zero(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/products/12345", "200")))
}

func TestMetrics_SkipsMetricsEndpoint(t *testing.T) {
	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	metricsRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestMetrics_InFlightReturnsToZero(t *testing.T) {
	router := metricsRouter()
	before := testutil.ToFloat64(httpRequestsInFlight)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/1", nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, before, testutil.ToFloat64(httpRequestsInFlight))
}

func TestMetrics_DurationAndSizeObserved(t *testing.T) {
	router := metricsRouter()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/99", nil))

	assert.Positive(t, testutil.CollectAndCount(httpRequestDuration))
	assert.Positive(t, testutil.CollectAndCount(httpResponseSize))
}

func TestRecordPurchase(t *testing.T) {
	created := testutil.ToFloat64(PurchasesTotal.WithLabelValues("created"))
	failed := testutil.ToFloat64(PurchasesTotal.WithLabelValues("failed"))

	RecordPurchase("created", 3)
	RecordPurchase("failed", 0)

	assert.Equal(t, created+1, testutil.ToFloat64(PurchasesTotal.WithLabelValues("created")))
	assert.Equal(t, failed+1, testutil.ToFloat64(PurchasesTotal.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(PurchaseAmount))
}

func TestRecordCatalogWrite(t *testing.T) {
	counter := CatalogWritesTotal.WithLabelValues("Vendor", "delete")
	before := testutil.ToFloat64(counter)

	RecordCatalogWrite("Vendor", "delete")

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestUpdateDBConnections(t *testing.T) {
	UpdateDBConnections(5, 10, 25)

	assert.Equal(t, 5.0, testutil.ToFloat64(DBConnections.WithLabelValues("idle")))
	assert.Equal(t, 10.0, testutil.ToFloat64(DBConnections.WithLabelValues("in_use")))
	assert.Equal(t, 25.0, testutil.ToFloat64(DBConnections.WithLabelValues("max")))
}
