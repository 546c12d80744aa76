package handlers

// /live и /health не трогают зависимости; /ready и /health/detailed
// опрашивают postgres, redis и nats через DependencyCheck.

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
)

const checkTimeout = 2 * time.Second

// ============================================
// Health Check Handler
// ============================================

// DependencyCheck - проверка одной зависимости (postgres, redis, nats).
type DependencyCheck struct {
	Name string
	// Optional: падение не делает сервис not ready, только degraded.
	Optional bool
	Check    func(ctx context.Context) error
}

// PoolStats - снимок пула соединений БД.
type PoolStats struct {
	Total    int32
	Idle     int32
	Acquired int32
	Max      int32
}

// HealthHandler обрабатывает health check запросы.
type HealthHandler struct {
	checks    []DependencyCheck
	poolStats func() (PoolStats, bool)
	version   string
	startTime time.Time
}

// NewHealthHandler создаёт новый HealthHandler.
func NewHealthHandler(version string, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		version:   version,
		startTime: time.Now(),
	}
}

// WithPoolStats подключает статистику пула для /health/detailed.
func (h *HealthHandler) WithPoolStats(fn func() (PoolStats, bool)) *HealthHandler {
	h.poolStats = fn
	return h
}

// ============================================
// Response Types
// ============================================

// HealthResponse - ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"` // "healthy", "unhealthy", "degraded"
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessResponse - ответ readiness check.
type ReadinessResponse struct {
	Ready     bool              `json:"ready"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// ============================================
// HTTP Handlers
// ============================================

// Health возвращает базовый health статус.
//
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    h.uptime(),
		Timestamp: time.Now().UTC(),
	})
}

// Ready проверяет готовность приложения.
//
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	checks, ready, _ := h.run(c.Request.Context(), true)

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, ReadinessResponse{
		Ready:     ready,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	})
}

// Live возвращает статус "живости" приложения.
//
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// DetailedHealth возвращает детальную информацию о состоянии.
//
// @Router /health/detailed [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	checks, ready, degraded := h.run(c.Request.Context(), false)

	if h.poolStats != nil {
		if stats, ok := h.poolStats(); ok {
			checks["db_total_conns"] = strconv.Itoa(int(stats.Total))
			checks["db_idle_conns"] = strconv.Itoa(int(stats.Idle))
			checks["db_acquired_conns"] = strconv.Itoa(int(stats.Acquired))

			middleware.UpdateDBConnections(stats.Idle, stats.Acquired, stats.Max)
		}
	}

	status := "healthy"
	switch {
	case !ready:
		status = "unhealthy"
	case degraded:
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    h.uptime(),
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

// run гоняет проверки параллельно, каждую со своим checkTimeout.
// ready=false - упала обязательная, degraded=true - упала опциональная.
func (h *HealthHandler) run(ctx context.Context, withCause bool) (map[string]string, bool, bool) {
	errs := make([]error, len(h.checks))

	// ошибки собираются в errs, g.Wait всегда nil
	var g errgroup.Group
	for i, dc := range h.checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			errs[i] = dc.Check(cctx)
			return nil
		})
	}
	_ = g.Wait()

	checks := make(map[string]string, len(h.checks))
	ready, degraded := true, false
	for i, dc := range h.checks {
		if errs[i] == nil {
			checks[dc.Name] = "healthy"
			continue
		}

		checks[dc.Name] = "unhealthy"
		if withCause {
			checks[dc.Name] += ": " + errs[i].Error()
		}
		if dc.Optional {
			degraded = true
		} else {
			ready = false
		}
	}

	return checks, ready, degraded
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}

// RegisterRoutes регистрирует health check маршруты.
//
// Routes:
// - GET /health          - Basic health check
// - GET /health/detailed - Detailed health with metrics
// - GET /ready           - Readiness probe
// - GET /live            - Liveness probe
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/health/detailed", h.DetailedHealth)
	router.GET("/ready", h.Ready)
	router.GET("/live", h.Live)
}
