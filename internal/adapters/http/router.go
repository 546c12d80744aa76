// Package http - Router configuration for REST API.
//
// Router собирает handlers и middleware в единую точку входа.
//
// Группы маршрутов:
// - /api/v1        - публичный каталог, регистрация, чтение отзывов
// - /api/v1 (auth) - покупки, отзывы, /me, logout
// - /api/v1/admin  - запись в каталог, пользователи, модерация (роль admin)
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/adapters/http/handlers"
	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
)

// ============================================
// Router Configuration
// ============================================

// RouterConfig - конфигурация роутера.
type RouterConfig struct {
	// Logger для middleware
	Logger *slog.Logger
	// ServiceName для otelgin spans
	ServiceName string
	// Version приложения
	Version string
	// Environment (development, staging, production)
	Environment string
	// AllowedOrigins для CORS (production)
	AllowedOrigins []string
	// CORS - полная настройка, перекрывает AllowedOrigins
	CORS *middleware.CORSConfig
	// AuthTokenValidator - функция валидации токена
	AuthTokenValidator func(token string) (*middleware.AuthClaims, error)
	// RateLimit - глобальный лимит по IP, nil = выключен
	RateLimit *middleware.RateLimitConfig
	// WriteOpsPerMin - лимит изменяющих запросов на пользователя
	WriteOpsPerMin int
	// LimitStore - общие счётчики лимитов (Redis), nil = в памяти процесса
	LimitStore middleware.LimitStore
	// MaxUploadSize - лимит тела запроса (413 сверх него) и памяти
	// под multipart форму; 0 - без лимита
	MaxUploadSize int64
	// HealthChecks - зависимости для /ready и /health/detailed
	HealthChecks []handlers.DependencyCheck
	// PoolStats - статистика пула БД, nil для memory backend
	PoolStats func() (handlers.PoolStats, bool)
}

// DefaultRouterConfig - конфигурация по умолчанию для development.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:             slog.Default(),
		ServiceName:        "storehub",
		Version:            "dev",
		Environment:        "development",
		AllowedOrigins:     []string{"*"},
		AuthTokenValidator: middleware.MockTokenValidator,
		RateLimit:          middleware.DefaultRateLimitConfig(),
		MaxUploadSize:      32 << 20,
	}
}

// ============================================
// Route modules
// ============================================

// Handler регистрирует свои маршруты в тех группах, чьи методы реализует.
type (
	publicRoutes    interface{ RegisterRoutes(*gin.RouterGroup) }
	protectedRoutes interface{ RegisterProtectedRoutes(*gin.RouterGroup) }
	adminRoutes     interface{ RegisterAdminRoutes(*gin.RouterGroup) }
)

// DirectoryRoutes - справочник (категории, вендоры, атрибуты, роли).
type DirectoryRoutes interface {
	publicRoutes
	adminRoutes
}

// CatalogHandlers - товары и справочники.
type CatalogHandlers struct {
	Products    *handlers.ProductHandler
	Directories []DirectoryRoutes
}

// RouterBuilder собирает engine из route modules; порядок With* задаёт
// порядок регистрации внутри каждой группы.
type RouterBuilder struct {
	config  *RouterConfig
	modules []any
}

func NewRouterBuilder(config *RouterConfig) *RouterBuilder {
	if config == nil {
		config = DefaultRouterConfig()
	}
	return &RouterBuilder{config: config}
}

func (b *RouterBuilder) add(m any, present bool) *RouterBuilder {
	if present {
		b.modules = append(b.modules, m)
	}
	return b
}

func (b *RouterBuilder) WithCatalog(catalog *CatalogHandlers) *RouterBuilder {
	if catalog == nil {
		return b
	}
	b.add(catalog.Products, catalog.Products != nil)
	for _, d := range catalog.Directories {
		b.add(d, d != nil)
	}
	return b
}

func (b *RouterBuilder) WithUsers(h *handlers.UserHandler) *RouterBuilder { return b.add(h, h != nil) }

func (b *RouterBuilder) WithComments(h *handlers.CommentHandler) *RouterBuilder {
	return b.add(h, h != nil)
}

func (b *RouterBuilder) WithTransactions(h *handlers.TransactionHandler) *RouterBuilder {
	return b.add(h, h != nil)
}

func (b *RouterBuilder) WithTokens(h *handlers.TokenHandler) *RouterBuilder { return b.add(h, h != nil) }

// Build создаёт сконфигурированный Gin Engine.
func (b *RouterBuilder) Build() *gin.Engine {
	if b.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if b.config.MaxUploadSize > 0 {
		router.MaxMultipartMemory = b.config.MaxUploadSize
	}

	handlers.SetupValidator()

	// ============================================
	// Global Middleware
	// ============================================

	// 1. Recovery - должен быть первым
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           b.config.Logger,
		EnableStackTrace: b.config.Environment != "production",
	}))

	// 2. Tracing
	if b.config.ServiceName != "" {
		router.Use(otelgin.Middleware(b.config.ServiceName))
	}

	// 3. Request ID
	router.Use(middleware.RequestID())

	// 3a. Лимит тела - до Logging, который читает начало body
	if b.config.MaxUploadSize > 0 {
		router.Use(middleware.BodyLimit(b.config.MaxUploadSize))
	}

	// 4. CORS
	switch {
	case b.config.CORS != nil:
		router.Use(middleware.CORS(b.config.CORS))
	case b.config.Environment == "production":
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(b.config.AllowedOrigins)))
	default:
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	// 5. Logging
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    b.config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))

	// 6. Rate Limiting (global, по IP)
	if b.config.RateLimit != nil {
		rl := *b.config.RateLimit
		if rl.Store == nil {
			rl.Store = b.config.LimitStore
		}
		if rl.Logger == nil {
			rl.Logger = b.config.Logger
		}
		router.Use(middleware.RateLimit(&rl))
	}

	// 7. Metrics (Prometheus)
	router.Use(middleware.Metrics())

	// ============================================
	// Service Routes (no auth)
	// ============================================

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	health := handlers.NewHealthHandler(b.config.Version, b.config.HealthChecks...)
	if b.config.PoolStats != nil {
		health.WithPoolStats(b.config.PoolStats)
	}
	health.RegisterRoutes(router)

	// ============================================
	// API v1 Routes
	// ============================================

	v1 := router.Group("/api/v1")
	auth := middleware.Auth(&middleware.AuthConfig{
		TokenValidator: b.config.AuthTokenValidator,
	})
	writeLimit := writesOnly(middleware.WriteRateLimit(b.config.WriteOpsPerMin, b.config.LimitStore))

	// Публичные GET без токена; регистрация пользователя идёт под write лимитом.
	public := v1.Group("", writeLimit)
	protected := v1.Group("", auth, writeLimit)
	admin := v1.Group("/admin", auth, middleware.RequireRole("admin"), writeLimit)

	for _, m := range b.modules {
		if r, ok := m.(publicRoutes); ok {
			r.RegisterRoutes(public)
		}
		if r, ok := m.(protectedRoutes); ok {
			r.RegisterProtectedRoutes(protected)
		}
		if r, ok := m.(adminRoutes); ok {
			r.RegisterAdminRoutes(admin)
		}
	}

	// ============================================
	// 404 Handler
	// ============================================

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, http.StatusNotFound, &common.APIError{
			Code:    common.ErrCodeNotFound,
			Message: "Endpoint not found",
			Details: map[string]any{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			},
		})
	})

	return router
}

// writesOnly пропускает чтение мимо лимитера.
func writesOnly(limit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			limit(c)
		}
	}
}

// ============================================
// Quick Setup Functions
// ============================================

// NewRouter создаёт роутер без API групп (health, metrics).
func NewRouter(config *RouterConfig) *gin.Engine {
	return NewRouterBuilder(config).Build()
}

// NewDevelopmentRouter создаёт роутер для development окружения.
func NewDevelopmentRouter() *gin.Engine {
	config := DefaultRouterConfig()
	config.Environment = "development"
	return NewRouter(config)
}
