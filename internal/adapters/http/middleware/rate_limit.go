// Package middleware - Rate Limiting middleware.
//
// Fixed window счётчик на ключ (IP или пользователь).
// По умолчанию состояние в памяти процесса; при нескольких репликах
// подключается общий LimitStore (Redis).
package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
)

// LimitStore считает запросы в окне.
// Take возвращает, пропущен ли запрос, сколько осталось и когда окно сбросится.
type LimitStore interface {
	Take(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, retryAfter time.Duration, err error)
}

// RateLimitConfig - конфигурация для rate limiting.
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window
	Window time.Duration
	// KeyFunc - ключ лимитирования, по умолчанию IP
	KeyFunc func(*gin.Context) string
	// OnLimitReached - callback при достижении лимита
	OnLimitReached func(*gin.Context)
	// Store - общее хранилище счётчиков, nil = в памяти процесса
	Store LimitStore
	// Logger для ошибок Store
	Logger *slog.Logger
}

// DefaultRateLimitConfig - 100 запросов в минуту с одного IP.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Limit:   100,
		Window:  time.Minute,
		KeyFunc: clientIPKey,
	}
}

func clientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ============================================
// In-memory store
// ============================================

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimitStore хранит окна в map; устаревшие окна удаляет janitor.
type MemoryLimitStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryLimitStore создаёт store и запускает очистку с периодом sweep.
func NewMemoryLimitStore(sweep time.Duration) *MemoryLimitStore {
	s := &MemoryLimitStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
	if sweep > 0 {
		go s.janitor(sweep)
	}
	return s
}

// Take реализует LimitStore.
func (s *MemoryLimitStore) Take(_ context.Context, key string, limit int, d time.Duration) (bool, int, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}

	retryAfter := w.resetAt.Sub(now)
	if w.count >= limit {
		return false, 0, retryAfter, nil
	}
	w.count++
	return true, limit - w.count, retryAfter, nil
}

func (s *MemoryLimitStore) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := s.now()
		for key, w := range s.windows {
			if !now.Before(w.resetAt) {
				delete(s.windows, key)
			}
		}
		s.mu.Unlock()
	}
}

// ============================================
// Middleware
// ============================================

// RateLimit middleware для ограничения количества запросов.
//
// Headers:
// - X-RateLimit-Limit: Максимум запросов
// - X-RateLimit-Remaining: Оставшееся количество
// - X-RateLimit-Reset: Время сброса (Unix timestamp)
// - Retry-After: Секунд до сброса (при 429)
//
// Ошибка Store не блокирует запрос (fail open).
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIPKey
	}
	store := config.Store
	if store == nil {
		store = NewMemoryLimitStore(config.Window * 2)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		allowed, remaining, retryAfter, err := store.Take(c.Request.Context(), keyFunc(c), config.Limit, config.Window)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit store unavailable", slog.String("error", err.Error()))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))

		if !allowed {
			retrySeconds := int(retryAfter.Seconds())
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retrySeconds))

			if config.OnLimitReached != nil {
				config.OnLimitReached(c)
			}

			common.TooManyRequestsResponse(c, retrySeconds)
			c.Abort()
			return
		}

		c.Next()
	}
}

// WriteRateLimit - лимит для изменяющих операций (create/update/delete, покупки).
// Ключ - пользователь, если он уже аутентифицирован, иначе IP.
func WriteRateLimit(limit int, store LimitStore) gin.HandlerFunc {
	if limit <= 0 {
		limit = 30
	}
	return RateLimit(&RateLimitConfig{
		Limit:  limit,
		Window: time.Minute,
		Store:  store,
		KeyFunc: func(c *gin.Context) string {
			if userID, ok := GetAuthUserID(c); ok {
				return "write:user:" + strconv.FormatInt(userID, 10)
			}
			return "write:" + clientIPKey(c)
		},
	})
}
