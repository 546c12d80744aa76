// Package product содержит use cases товара: composition workflow
// (создание со связями и фотографиями), обновление, чтение и каскадное удаление.
//
// Pattern: Use Case (Interactor)
// - Все шаги одного запроса выполняются последовательно в одном UnitOfWork
// - Побочные эффекты вне БД (файлы) компенсируются через compensation.List
// - События и инвалидация кэша - только после commit
package product

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/application/usecases/attribute"
	"github.com/Haleralex/storehub/internal/application/usecases/catalog"
	"github.com/Haleralex/storehub/internal/application/usecases/photo"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

const tracerName = "github.com/Haleralex/storehub/internal/application/usecases/product"

// DefaultCacheTTL - время жизни закэшированного представления товара.
const DefaultCacheTTL = 5 * time.Minute

// Deps - зависимости Service.
type Deps struct {
	Repos      ports.RepositoryResolver
	UnitOfWork ports.UnitOfWork
	Checker    *consistency.Checker
	Unbinder   *consistency.Unbinder
	Catalog    *catalog.Services
	Links      *attribute.LinkService
	Photos     *photo.Service
	Publisher  ports.EventPublisher // optional
	Cache      ports.ProductCache   // optional
	CacheTTL   time.Duration
	Tracer     trace.Tracer // optional
	Logger     *slog.Logger
}

// Service - use cases товара.
type Service struct {
	repos     ports.RepositoryResolver
	uow       ports.UnitOfWork
	checker   *consistency.Checker
	unbinder  *consistency.Unbinder
	catalog   *catalog.Services
	links     *attribute.LinkService
	photos    *photo.Service
	publisher ports.EventPublisher
	cache     ports.ProductCache
	cacheTTL  time.Duration
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewService creates a product Service.
func NewService(d Deps) *Service {
	s := &Service{
		repos:     d.Repos,
		uow:       d.UnitOfWork,
		checker:   d.Checker,
		unbinder:  d.Unbinder,
		catalog:   d.Catalog,
		links:     d.Links,
		photos:    d.Photos,
		publisher: d.Publisher,
		cache:     d.Cache,
		cacheTTL:  d.CacheTTL,
		tracer:    d.Tracer,
		logger:    d.Logger,
	}
	if s.publisher == nil {
		s.publisher = ports.NopEventPublisher{}
	}
	if s.cache == nil {
		s.cache = ports.NopProductCache{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = DefaultCacheTTL
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) products(scope ports.Scope) (ports.Repository, error) {
	return s.repos.Resolve(entities.KindProduct, scope)
}
