package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixedKey(key string) func(*gin.Context) string {
	return func(*gin.Context) string { return key }
}

func limitedRouter(cfg *RateLimitConfig) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func hit(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	return w
}

// failingStore имитирует недоступный Redis.
type failingStore struct{}

func (failingStore) Take(context.Context, string, int, time.Duration) (bool, int, time.Duration, error) {
	return false, 0, 0, errors.New("connection refused")
}

func TestDefaultRateLimitConfig(t *testing.T) {
	config := DefaultRateLimitConfig()

	assert.Equal(t, 100, config.Limit)
	assert.Equal(t, time.Minute, config.Window)
	assert.NotNil(t, config.KeyFunc)
	assert.Nil(t, config.Store)
}

func TestRateLimit_Limits(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		requests int
		lastCode int
	}{
		{"UnderLimit", 5, 5, http.StatusOK},
		{"OverLimit", 3, 4, http.StatusTooManyRequests},
		{"SingleRequest", 1, 1, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := limitedRouter(&RateLimitConfig{Limit: tt.limit, Window: time.Minute, KeyFunc: fixedKey("k")})

			var w *httptest.ResponseRecorder
			for i := 0; i < tt.requests; i++ {
				w = hit(router)
			}
			assert.Equal(t, tt.lastCode, w.Code)
		})
	}
}

func TestRateLimit_Headers(t *testing.T) {
	router := limitedRouter(&RateLimitConfig{Limit: 10, Window: time.Minute, KeyFunc: fixedKey("k")})

	w := hit(router)

	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_RejectedResponse(t *testing.T) {
	called := false
	router := limitedRouter(&RateLimitConfig{
		Limit:          1,
		Window:         time.Minute,
		KeyFunc:        fixedKey("k"),
		OnLimitReached: func(*gin.Context) { called = true },
	})

	assert.Equal(t, http.StatusOK, hit(router).Code)
	assert.False(t, called)

	w := hit(router)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, called)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
	assert.Contains(t, w.Body.String(), `"retry_after"`)
}

func TestRateLimit_DifferentKeys(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(&RateLimitConfig{
		Limit:   1,
		Window:  time.Minute,
		KeyFunc: func(c *gin.Context) string { return c.GetHeader("X-Key") },
	}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Key", key)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"))
}

func TestRateLimit_NilConfig(t *testing.T) {
	assert.Equal(t, http.StatusOK, hit(limitedRouter(nil)).Code)
}

func TestRateLimit_StoreErrorFailsOpen(t *testing.T) {
	router := limitedRouter(&RateLimitConfig{Limit: 1, Window: time.Minute, Store: failingStore{}})

	assert.Equal(t, http.StatusOK, hit(router).Code)
	assert.Equal(t, http.StatusOK, hit(router).Code)
}

func TestRateLimit_ConcurrentRequests(t *testing.T) {
	router := limitedRouter(&RateLimitConfig{Limit: 50, Window: time.Minute, KeyFunc: fixedKey("k")})

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if hit(router).Code == http.StatusOK {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, ok)
}

func TestWriteRateLimit_DefaultLimit(t *testing.T) {
	router := gin.New()
	router.Use(WriteRateLimit(0, nil))
	router.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
}

func TestWriteRateLimit_PerUser(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(AuthUserIDKey, c.GetHeader("X-User"))
		c.Next()
	})
	router.Use(WriteRateLimit(1, nil))
	router.POST("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("1"))
	assert.Equal(t, http.StatusTooManyRequests, send("1"))
	assert.Equal(t, http.StatusOK, send("2"), "limits are kept per user")
}

func TestMemoryLimitStore_WindowReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryLimitStore(0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, remaining, retryAfter, _ := store.Take(ctx, "k", 2, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, time.Minute, retryAfter)

	now = now.Add(10 * time.Second)
	allowed, remaining, _, _ = store.Take(ctx, "k", 2, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, retryAfter, _ = store.Take(ctx, "k", 2, time.Minute)
	assert.False(t, allowed)
	assert.Equal(t, 50*time.Second, retryAfter)

	// окно истекло - счётчик с нуля
	now = now.Add(50 * time.Second)
	allowed, remaining, _, _ = store.Take(ctx, "k", 2, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
}
