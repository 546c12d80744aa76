package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Test Setup
// ============================================

func setupHealthTestRouter(checks ...DependencyCheck) (*gin.Engine, *HealthHandler) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewHealthHandler("1.0.0", checks...)
	handler.RegisterRoutes(router)
	return router, handler
}

func okCheck(name string) DependencyCheck {
	return DependencyCheck{Name: name, Check: func(context.Context) error { return nil }}
}

func failingCheck(name string, optional bool) DependencyCheck {
	return DependencyCheck{
		Name:     name,
		Optional: optional,
		Check:    func(context.Context) error { return errors.New("connection refused") },
	}
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// ============================================
// Tests
// ============================================

func TestNewHealthHandler(t *testing.T) {
	handler := NewHealthHandler("1.2.3", okCheck("postgres"))

	assert.Equal(t, "1.2.3", handler.version)
	assert.Len(t, handler.checks, 1)
	assert.False(t, handler.startTime.IsZero())
}

func TestHealthHandler_Health(t *testing.T) {
	router, _ := setupHealthTestRouter(failingCheck("postgres", false))

	w := get(router, "/health")

	assert.Equal(t, http.StatusOK, w.Code, "liveness does not run dependency checks")

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.NotEmpty(t, response.Uptime)
}

func TestHealthHandler_Live(t *testing.T) {
	router, _ := setupHealthTestRouter()

	w := get(router, "/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		checks     []DependencyCheck
		wantStatus int
		wantReady  bool
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantReady:  true,
		},
		{
			name:       "all healthy",
			checks:     []DependencyCheck{okCheck("postgres"), okCheck("redis")},
			wantStatus: http.StatusOK,
			wantReady:  true,
		},
		{
			name:       "required dependency down",
			checks:     []DependencyCheck{failingCheck("postgres", false), okCheck("redis")},
			wantStatus: http.StatusServiceUnavailable,
			wantReady:  false,
		},
		{
			name:       "optional dependency down",
			checks:     []DependencyCheck{okCheck("postgres"), failingCheck("nats", true)},
			wantStatus: http.StatusOK,
			wantReady:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupHealthTestRouter(tt.checks...)

			w := get(router, "/ready")

			assert.Equal(t, tt.wantStatus, w.Code)

			var response ReadinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantReady, response.Ready)
			assert.Len(t, response.Checks, len(tt.checks))
		})
	}
}

func TestHealthHandler_Ready_ReportsCause(t *testing.T) {
	router, _ := setupHealthTestRouter(failingCheck("postgres", false))

	w := get(router, "/ready")

	var response ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "unhealthy: connection refused", response.Checks["postgres"])
}

func TestHealthHandler_DetailedHealth(t *testing.T) {
	t.Run("Degraded", func(t *testing.T) {
		router, _ := setupHealthTestRouter(okCheck("postgres"), failingCheck("redis", true))

		w := get(router, "/health/detailed")

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "degraded", response.Status)
		assert.Equal(t, "unhealthy", response.Checks["redis"])
	})

	t.Run("Unhealthy", func(t *testing.T) {
		router, _ := setupHealthTestRouter(failingCheck("postgres", false))

		w := get(router, "/health/detailed")

		assert.Equal(t, http.StatusOK, w.Code)
		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "unhealthy", response.Status)
	})

	t.Run("PoolStats", func(t *testing.T) {
		router, handler := setupHealthTestRouter(okCheck("postgres"))
		handler.WithPoolStats(func() (PoolStats, bool) {
			return PoolStats{Total: 5, Idle: 3, Acquired: 2, Max: 10}, true
		})

		w := get(router, "/health/detailed")

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "5", response.Checks["db_total_conns"])
		assert.Equal(t, "2", response.Checks["db_acquired_conns"])
	})
}

func TestHealthHandler_CheckTimeout(t *testing.T) {
	slow := DependencyCheck{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	router, _ := setupHealthTestRouter(slow)

	w := get(router, "/ready")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthHandler_ChecksRunConcurrently(t *testing.T) {
	slow := func(name string) DependencyCheck {
		return DependencyCheck{Name: name, Check: func(context.Context) error {
			time.Sleep(300 * time.Millisecond)
			return nil
		}}
	}
	router, _ := setupHealthTestRouter(slow("postgres"), slow("redis"), slow("nats"))

	start := time.Now()
	w := get(router, "/ready")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Less(t, time.Since(start), 800*time.Millisecond)
}

func BenchmarkHealthHandler_Health(b *testing.B) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHealthHandler("1.0.0").RegisterRoutes(router)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	}
}
