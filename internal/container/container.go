// Package container - Dependency Injection container for the application.
//
// Container управляет жизненным циклом всех зависимостей:
// - Создание (в порядке Initialize)
// - Доступ (getters)
// - Закрытие (Shutdown, в обратном порядке)
//
// Pattern: Composition Root
// - Все зависимости собираются в одном месте
// - Backend хранилища (postgres / memory) выбирается конфигурацией
// - Внешние сервисы (NATS, Redis, S3) опциональны
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"

	"github.com/Haleralex/storehub/internal/adapters/http"
	"github.com/Haleralex/storehub/internal/adapters/http/handlers"
	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/application/registry"
	"github.com/Haleralex/storehub/internal/application/usecases/attribute"
	"github.com/Haleralex/storehub/internal/application/usecases/catalog"
	"github.com/Haleralex/storehub/internal/application/usecases/comment"
	"github.com/Haleralex/storehub/internal/application/usecases/photo"
	"github.com/Haleralex/storehub/internal/application/usecases/product"
	"github.com/Haleralex/storehub/internal/application/usecases/token"
	"github.com/Haleralex/storehub/internal/application/usecases/transaction"
	"github.com/Haleralex/storehub/internal/application/usecases/user"
	"github.com/Haleralex/storehub/internal/config"
	"github.com/Haleralex/storehub/internal/domain/entities"
	rediscache "github.com/Haleralex/storehub/internal/infrastructure/cache/redis"
	natspub "github.com/Haleralex/storehub/internal/infrastructure/messaging/nats"
	"github.com/Haleralex/storehub/internal/infrastructure/persistence/memory"
	"github.com/Haleralex/storehub/internal/infrastructure/persistence/postgres"
	"github.com/Haleralex/storehub/internal/infrastructure/security"
	"github.com/Haleralex/storehub/internal/infrastructure/storage/local"
	s3storage "github.com/Haleralex/storehub/internal/infrastructure/storage/s3"
	"github.com/Haleralex/storehub/internal/pkg/logger"
	"github.com/Haleralex/storehub/internal/pkg/tracing"
)

// ============================================
// Container
// ============================================

// Container - DI контейнер приложения.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	pool      *pgxpool.Pool
	store     *memory.Store
	uow       ports.UnitOfWork
	registry  *registry.Registry
	files     ports.FileStorage
	fs        afero.Fs
	publisher ports.EventPublisher
	mailer    ports.Mailer
	cache     ports.ProductCache
	hasher    ports.PasswordHasher

	redisClient     *goredis.Client
	closeNATS       func()
	shutdownTracing tracing.ShutdownFunc
	healthChecks    []handlers.DependencyCheck

	// Services
	checker      *consistency.Checker
	unbinder     *consistency.Unbinder
	catalog      *catalog.Services
	links        *attribute.LinkService
	photos       *photo.Service
	products     *product.Service
	users        *user.Users
	comments     *comment.Service
	tokens       *token.Service
	transactions transactionUseCases

	// HTTP
	httpServer *http.Server
}

type transactionUseCases struct {
	create *transaction.CreateTransactionUseCase
	get    *transaction.GetTransactionUseCase
	update *transaction.UpdateTransactionUseCase
	delete *transaction.DeleteTransactionUseCase
	list   *transaction.ListTransactionsUseCase
}

// New создаёт новый контейнер с заданной конфигурацией.
func New(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// ============================================
// Initialization
// ============================================

// Initialize инициализирует все зависимости.
func (c *Container) Initialize(ctx context.Context) error {
	if c.logger == nil {
		c.logger = c.initLogger()
	}
	c.logger.Info("Initializing application container...")

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"tracing", c.initTracing},
		{"persistence", c.initPersistence},
		{"file storage", c.initFileStorage},
		{"messaging", c.initMessaging},
		{"cache", c.initCache},
		{"security", c.initSecurity},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		c.logger.Info("Initialized " + step.name)
	}

	c.initServices()
	c.logger.Info("Services initialized")

	c.initHTTPServer()
	c.logger.Info("HTTP server initialized")

	c.logger.Info("Container initialization complete")
	return nil
}

// initLogger инициализирует логгер.
func (c *Container) initLogger() *slog.Logger {
	var output io.Writer = os.Stdout
	if c.config.Log.Output == "stderr" {
		output = os.Stderr
	}

	l := logger.New(&logger.Config{
		Level:     c.config.Log.Level,
		Format:    c.config.Log.Format,
		Output:    output,
		AddSource: c.config.App.Debug,
	})
	slog.SetDefault(l)

	return l
}

func (c *Container) initTracing(ctx context.Context) error {
	shutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:     c.config.Tracing.Enabled,
		Endpoint:    c.config.Tracing.Endpoint,
		Insecure:    c.config.Tracing.Insecure,
		ServiceName: c.config.App.Name,
		Environment: c.config.App.Environment,
		SampleRatio: c.config.Tracing.SampleRatio,
	}, c.logger)
	if err != nil {
		return err
	}
	c.shutdownTracing = shutdown
	return nil
}

// initPersistence выбирает backend и заполняет registry фабриками для всех kind.
func (c *Container) initPersistence(ctx context.Context) error {
	var factory func(entities.Kind) ports.RepositoryFactory

	switch c.config.Database.Driver {
	case config.DriverMemory:
		c.store = memory.NewStore(c.logger)
		c.uow = c.store
		factory = c.store.Factory

	case config.DriverPostgres, "":
		if c.pool == nil {
			db := c.config.Database
			pool, err := postgres.NewConnectionPool(ctx, postgres.Config{
				URL:             db.DSN(),
				ApplicationName: c.config.App.Name,
				MaxConns:        db.MaxConnections,
				MinConns:        db.MinConnections,
				MaxConnLifetime: db.MaxConnLifetime,
				MaxConnIdleTime: db.MaxConnIdleTime,
				ConnectAttempts: db.ConnectAttempts,
				RetryBackoff:    time.Second,
				Logger:          c.logger,
			})
			if err != nil {
				return err
			}
			c.pool = pool
		}
		c.uow = postgres.NewUnitOfWork(c.pool, c.logger).Retrying(c.config.Database.MaxRetries)
		factory = postgres.Factory

		pool := c.pool
		c.healthChecks = append(c.healthChecks, handlers.DependencyCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return postgres.HealthCheck(ctx, pool) },
		})

	default:
		return fmt.Errorf("unknown database driver %q", c.config.Database.Driver)
	}

	c.registry = registry.New(c.uow.Scope())
	kinds := entities.AllKinds()
	for _, kind := range kinds {
		c.registry.Register(kind, factory(kind))
	}
	return c.registry.Validate(kinds...)
}

func (c *Container) initFileStorage(ctx context.Context) error {
	if c.files != nil {
		return nil
	}

	st := c.config.Storage
	switch st.Driver {
	case config.StorageS3:
		files, err := s3storage.New(ctx, s3storage.Config{
			Bucket:          st.S3.Bucket,
			Region:          st.S3.Region,
			Endpoint:        st.S3.Endpoint,
			AccessKeyID:     st.S3.AccessKey,
			SecretAccessKey: st.S3.SecretKey,
			PathStyle:       st.S3.UsePathStyle,
			PublicURL:       st.S3.PublicURL,
		}, c.logger)
		if err != nil {
			return err
		}
		c.files = files

	case config.StorageLocal, "":
		if c.fs == nil {
			c.fs = afero.NewOsFs()
		}
		files, err := local.New(c.fs, st.Dir, st.BaseURL, c.logger)
		if err != nil {
			return err
		}
		c.files = files

	default:
		return fmt.Errorf("unknown storage driver %q", st.Driver)
	}
	return nil
}

// initMessaging подключает NATS. Без URL события и письма не отправляются.
func (c *Container) initMessaging(_ context.Context) error {
	if c.publisher != nil {
		return nil
	}
	if c.config.NATS.URL == "" {
		c.publisher = ports.NopEventPublisher{}
		c.mailer = ports.NopMailer{}
		return nil
	}

	pub, closeFn, err := natspub.Connect(natspub.Config{
		URL:           c.config.NATS.URL,
		SubjectPrefix: c.config.NATS.SubjectPrefix,
		MailSubject:   c.config.NATS.MailSubject,
	}, c.logger)
	if err != nil {
		return err
	}
	c.publisher = pub
	c.mailer = pub
	c.closeNATS = closeFn
	c.healthChecks = append(c.healthChecks, handlers.DependencyCheck{
		Name:     "nats",
		Optional: true,
		Check:    pub.Ping,
	})
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	if c.cache != nil {
		return nil
	}
	if !c.config.Redis.Enabled {
		c.cache = ports.NopProductCache{}
		return nil
	}

	client, err := rediscache.NewClient(ctx, c.config.Redis.URL)
	if err != nil {
		return err
	}
	c.redisClient = client
	c.cache = rediscache.NewProductCache(client, c.logger)
	c.healthChecks = append(c.healthChecks, handlers.DependencyCheck{
		Name:     "redis",
		Optional: true,
		Check:    func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})
	return nil
}

func (c *Container) initSecurity(_ context.Context) error {
	hasher, err := security.NewBcryptHasher(c.config.Users.BcryptCost)
	if err != nil {
		return err
	}
	c.hasher = hasher
	return nil
}

// initServices собирает use cases поверх registry и UnitOfWork.
func (c *Container) initServices() {
	if c.mailer == nil {
		c.mailer = ports.NopMailer{}
	}

	c.checker = consistency.NewChecker(c.registry, c.logger)
	c.unbinder = consistency.NewUnbinder(c.registry, c.logger)

	c.catalog = catalog.NewServices(c.registry, c.checker, c.unbinder, c.uow, c.logger)
	c.links = attribute.NewLinkService(c.registry, c.catalog.Attributes, c.checker, c.uow, c.logger)
	c.photos = photo.NewService(c.registry, c.files, c.logger)

	// удаление товара/атрибута/пользователя чистит связи и файлы
	c.links.Register(c.unbinder)
	c.photos.Register(c.unbinder)

	c.products = product.NewService(product.Deps{
		Repos:      c.registry,
		UnitOfWork: c.uow,
		Checker:    c.checker,
		Unbinder:   c.unbinder,
		Catalog:    c.catalog,
		Links:      c.links,
		Photos:     c.photos,
		Publisher:  c.publisher,
		Cache:      c.cache,
		CacheTTL:   c.config.Redis.TTL,
		Tracer:     otel.Tracer("storehub/product"),
		Logger:     c.logger,
	})

	c.users = user.NewUsers(c.registry, c.checker, c.unbinder, c.catalog.Roles, c.photos, c.uow, c.logger)
	c.comments = comment.NewService(c.registry, c.checker, c.uow, c.logger)
	c.tokens = token.NewService(c.registry, c.checker, c.uow, c.logger)
	c.transactions = transactionUseCases{
		create: transaction.NewCreateTransactionUseCase(c.registry, c.checker, c.uow, c.logger),
		get:    transaction.NewGetTransactionUseCase(c.checker, c.uow),
		update: transaction.NewUpdateTransactionUseCase(c.registry, c.checker, c.uow, c.logger),
		delete: transaction.NewDeleteTransactionUseCase(c.registry, c.checker, c.uow),
		list:   transaction.NewListTransactionsUseCase(c.registry, c.checker, c.uow),
	}
}

// initHTTPServer инициализирует HTTP сервер.
func (c *Container) initHTTPServer() {
	// Token validator: в development можно включить mock (токен = user_id)
	tokenValidator := middleware.JWTTokenValidator(c.config.Auth.JWTSecret, c.config.Auth.JWTIssuer)
	if c.config.Auth.EnableMockAuth {
		tokenValidator = middleware.MockTokenValidator
	}

	var rateLimit *middleware.RateLimitConfig
	if c.config.RateLimit.Enabled {
		rateLimit = middleware.DefaultRateLimitConfig()
		if c.config.RateLimit.RequestsPerMinute > 0 {
			rateLimit.Limit = c.config.RateLimit.RequestsPerMinute
		}
	}

	routerConfig := &http.RouterConfig{
		Logger:             c.logger,
		ServiceName:        c.config.App.Name,
		Version:            c.config.App.Version,
		Environment:        c.config.App.Environment,
		AllowedOrigins:     c.config.CORS.AllowedOrigins,
		CORS: &middleware.CORSConfig{
			AllowOrigins:     c.config.CORS.AllowedOrigins,
			AllowMethods:     c.config.CORS.AllowedMethods,
			AllowHeaders:     c.config.CORS.AllowedHeaders,
			ExposeHeaders:    c.config.CORS.ExposedHeaders,
			AllowCredentials: c.config.CORS.AllowCredentials,
			MaxAge:           c.config.CORS.MaxAge,
		},
		AuthTokenValidator: tokenValidator,
		RateLimit:          rateLimit,
		WriteOpsPerMin:     c.config.RateLimit.WriteOpsPerMin,
		MaxUploadSize:      c.config.Server.MaxUploadSize,
		HealthChecks:       c.healthChecks,
	}
	if c.redisClient != nil {
		// лимиты общие для всех реплик
		routerConfig.LimitStore = rediscache.NewWindowCounter(c.redisClient)
	} else {
		routerConfig.LimitStore = middleware.NewMemoryLimitStore(c.config.RateLimit.CleanupInterval)
	}
	if c.pool != nil {
		pool := c.pool
		routerConfig.PoolStats = func() (handlers.PoolStats, bool) {
			s := postgres.GetPoolStats(pool)
			return handlers.PoolStats{
				Total:    s.TotalConns,
				Idle:     s.IdleConns,
				Acquired: s.AcquiredConns,
				Max:      s.MaxConns,
			}, true
		}
	}

	users := c.users
	router := http.NewRouterBuilder(routerConfig).
		WithCatalog(&http.CatalogHandlers{
			Products: handlers.NewProductHandler(c.products, c.links),
			Directories: []http.DirectoryRoutes{
				handlers.NewCategoryHandler(c.catalog.Categories),
				handlers.NewVendorHandler(c.catalog.Vendors),
				handlers.NewAttributeHandler(c.catalog.Attributes),
				handlers.NewRoleHandler(c.catalog.Roles),
			},
		}).
		WithUsers(handlers.NewUserHandler(handlers.UserUseCases{
			Create:     user.NewCreateUserUseCase(users, c.hasher, c.mailer, c.publisher, c.config.Users.ActivationURL),
			Get:        user.NewGetUserUseCase(users),
			List:       user.NewListUsersUseCase(users),
			Update:     user.NewUpdateUserUseCase(users),
			Delete:     user.NewDeleteUserUseCase(users, c.publisher),
			Activate:   user.NewActivateUserUseCase(users, c.publisher),
			AddRole:    user.NewAddRoleUseCase(users),
			RemoveRole: user.NewRemoveRoleUseCase(users),
		})).
		WithComments(handlers.NewCommentHandler(c.comments)).
		WithTransactions(handlers.NewTransactionHandler(
			c.transactions.create,
			c.transactions.get,
			c.transactions.update,
			c.transactions.delete,
			c.transactions.list,
		)).
		WithTokens(handlers.NewTokenHandler(c.tokens)).
		Build()

	serverConfig := &http.ServerConfig{
		Host:              c.config.Server.Host,
		Port:              strconv.Itoa(c.config.Server.Port),
		ReadTimeout:       c.config.Server.ReadTimeout,
		ReadHeaderTimeout: c.config.Server.ReadHeaderTimeout,
		WriteTimeout:      c.config.Server.WriteTimeout,
		IdleTimeout:       c.config.Server.IdleTimeout,
		ShutdownTimeout:   c.config.Server.ShutdownTimeout,
		MaxHeaderBytes:    c.config.Server.MaxHeaderBytes,
		Logger:            c.logger,
	}

	c.httpServer = http.NewServer(serverConfig, router)
}

// ============================================
// Getters
// ============================================

// Config возвращает конфигурацию.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger возвращает логгер.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Pool возвращает пул соединений к БД (nil для memory backend).
func (c *Container) Pool() *pgxpool.Pool {
	return c.pool
}

// HTTPServer возвращает HTTP сервер.
func (c *Container) HTTPServer() *http.Server {
	return c.httpServer
}

// Registry возвращает реестр репозиториев.
func (c *Container) Registry() *registry.Registry {
	return c.registry
}

// UnitOfWork возвращает Unit of Work.
func (c *Container) UnitOfWork() ports.UnitOfWork {
	return c.uow
}

// Catalog возвращает справочники.
func (c *Container) Catalog() *catalog.Services {
	return c.catalog
}

// Products возвращает use cases товара.
func (c *Container) Products() *product.Service {
	return c.products
}

// Links возвращает use cases связей товар-атрибут.
func (c *Container) Links() *attribute.LinkService {
	return c.links
}

// Users возвращает общие зависимости use cases пользователя.
func (c *Container) Users() *user.Users {
	return c.users
}

// Comments возвращает use cases отзывов.
func (c *Container) Comments() *comment.Service {
	return c.comments
}

// Tokens возвращает хранилище refresh tokens.
func (c *Container) Tokens() *token.Service {
	return c.tokens
}

// ============================================
// Shutdown
// ============================================

// Shutdown выполняет graceful shutdown всех компонентов.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	var errs []error

	// 1. HTTP Server - перестаём принимать запросы
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// 2. Messaging / cache
	if c.closeNATS != nil {
		c.closeNATS()
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	// 3. Database (даём время на завершение транзакций)
	if c.pool != nil {
		done := make(chan struct{})
		go func() {
			c.pool.Close()
			close(done)
		}()

		select {
		case <-done:
			c.logger.Info("Database connection closed")
		case <-ctx.Done():
			c.logger.Warn("Database close timeout")
		}
	}

	// 4. Tracing - последним, чтобы выгрузить spans shutdown'а
	if c.shutdownTracing != nil {
		if err := c.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// ============================================
// Run
// ============================================

// Run запускает приложение и ожидает сигнал завершения.
func (c *Container) Run() error {
	c.logger.Info("Starting StoreHub API Server",
		slog.String("version", c.config.App.Version),
		slog.String("environment", c.config.App.Environment),
		slog.String("storage", c.config.Database.Driver),
		slog.String("address", c.config.Server.Address()),
	)

	return c.httpServer.Run()
}

// ============================================
// Builder Pattern (Alternative)
// ============================================

// ContainerBuilder - builder для создания контейнера с кастомными компонентами.
// Используется в тестах: подставить готовый pool, in-memory FS, mock publisher.
type ContainerBuilder struct {
	cfg       *config.Config
	logger    *slog.Logger
	pool      *pgxpool.Pool
	fs        afero.Fs
	files     ports.FileStorage
	publisher ports.EventPublisher
	mailer    ports.Mailer
	cache     ports.ProductCache
}

// NewBuilder создаёт новый builder.
func NewBuilder(cfg *config.Config) *ContainerBuilder {
	return &ContainerBuilder{
		cfg: cfg,
	}
}

// WithLogger устанавливает кастомный логгер.
func (b *ContainerBuilder) WithLogger(logger *slog.Logger) *ContainerBuilder {
	b.logger = logger
	return b
}

// WithPool устанавливает готовый пул соединений.
func (b *ContainerBuilder) WithPool(pool *pgxpool.Pool) *ContainerBuilder {
	b.pool = pool
	return b
}

// WithFilesystem подменяет файловую систему local storage.
func (b *ContainerBuilder) WithFilesystem(fs afero.Fs) *ContainerBuilder {
	b.fs = fs
	return b
}

// WithFileStorage устанавливает готовое хранилище фото.
func (b *ContainerBuilder) WithFileStorage(files ports.FileStorage) *ContainerBuilder {
	b.files = files
	return b
}

// WithEventPublisher устанавливает кастомный event publisher.
func (b *ContainerBuilder) WithEventPublisher(ep ports.EventPublisher) *ContainerBuilder {
	b.publisher = ep
	return b
}

// WithMailer устанавливает кастомный mailer.
func (b *ContainerBuilder) WithMailer(m ports.Mailer) *ContainerBuilder {
	b.mailer = m
	return b
}

// WithProductCache устанавливает кастомный кэш товаров.
func (b *ContainerBuilder) WithProductCache(cache ports.ProductCache) *ContainerBuilder {
	b.cache = cache
	return b
}

// Build создаёт и инициализирует контейнер.
func (b *ContainerBuilder) Build(ctx context.Context) (*Container, error) {
	c := New(b.cfg)
	c.logger = b.logger
	c.pool = b.pool
	c.fs = b.fs
	c.files = b.files
	c.publisher = b.publisher
	c.mailer = b.mailer
	c.cache = b.cache

	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
