package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "storehub"

// unmatchedRoute - label для запросов мимо зарегистрированных маршрутов,
// чтобы сырые пути не раздували кардинальность.
const unmatchedRoute = "unmatched"

// ============================================
// HTTP
// ============================================

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests being served.",
	})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response body size.",
		Buckets:   prometheus.ExponentialBuckets(128, 4, 8), // 128B .. 2MB
	}, []string{"method", "route"})
)

// ============================================
// Catalog
// ============================================

var (
	// PurchasesTotal - покупки по исходу: created, failed.
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "catalog",
		Name:      "purchases_total",
		Help:      "Purchase attempts by outcome.",
	}, []string{"status"})

	// PurchaseAmount - штук товара в успешной покупке.
	PurchaseAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "catalog",
		Name:      "purchase_amount",
		Help:      "Units per successful purchase.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	// CatalogWritesTotal - успешные create/update/delete по kind.
	CatalogWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "catalog",
		Name:      "writes_total",
		Help:      "Successful catalog mutations by record kind and operation.",
	}, []string{"kind", "operation"})

	// DBConnections - состояние пула pgx, обновляется health handler'ом.
	DBConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "db",
		Name:      "connections",
		Help:      "Database pool connections by state.",
	}, []string{"state"})
)

// Metrics собирает HTTP метрики; /metrics сам себя не считает.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		httpRequestsInFlight.Inc()
		start := time.Now()

		c.Next()

		httpRequestsInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			httpResponseSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}

// RecordPurchase: amount учитывается только для status == "created".
func RecordPurchase(status string, amount int) {
	PurchasesTotal.WithLabelValues(status).Inc()
	if status == "created" {
		PurchaseAmount.Observe(float64(amount))
	}
}

func RecordCatalogWrite(kind, operation string) {
	CatalogWritesTotal.WithLabelValues(kind, operation).Inc()
}

// UpdateDBConnections публикует снимок pgxpool.Stat.
func UpdateDBConnections(idle, inUse, max int32) {
	DBConnections.WithLabelValues("idle").Set(float64(idle))
	DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	DBConnections.WithLabelValues("max").Set(float64(max))
}
