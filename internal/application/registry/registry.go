// Package registry - фасад доступа к репозиториям.
//
// Таблица kind -> factory заполняется один раз в composition root
// (container). Любой компонент получает репозиторий через Resolve,
// передавая явный scope: транзакционный внутри UnitOfWork.Execute
// или default scope вне транзакции.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// Registry maps entity kinds to repository factories.
type Registry struct {
	mu           sync.RWMutex
	factories    map[entities.Kind]ports.RepositoryFactory
	defaultScope ports.Scope
}

// New creates an empty registry. defaultScope is used when Resolve gets a nil
// scope; it may be nil, in which case a scope is always required.
func New(defaultScope ports.Scope) *Registry {
	return &Registry{
		factories:    make(map[entities.Kind]ports.RepositoryFactory),
		defaultScope: defaultScope,
	}
}

// Register binds factory to kind. Registering a kind twice replaces the factory.
func (r *Registry) Register(kind entities.Kind, factory ports.RepositoryFactory) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
	return r
}

// Resolve returns the repository for kind bound to scope.
//
// Errors:
// - ConfigurationError: kind is not registered
// - ConfigurationError: scope is nil and there is no default scope
func (r *Registry) Resolve(kind entities.Kind, scope ports.Scope) (ports.Repository, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	def := r.defaultScope
	r.mu.RUnlock()

	if !ok || factory == nil {
		return nil, domainerrors.NewConfigurationError("registry.Resolve",
			fmt.Sprintf("no repository registered for kind %s", kind))
	}
	if scope == nil {
		if def == nil {
			return nil, domainerrors.NewConfigurationError("registry.Resolve",
				fmt.Sprintf("no scope given and no default scope for kind %s", kind))
		}
		scope = def
	}
	return factory(scope)
}

// Kinds returns registered kinds in stable order.
func (r *Registry) Kinds() []entities.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Kind, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that every kind in kinds is registered.
// Container calls it once at startup.
func (r *Registry) Validate(kinds ...entities.Kind) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range kinds {
		if _, ok := r.factories[k]; !ok {
			return domainerrors.NewConfigurationError("registry.Validate",
				fmt.Sprintf("no repository registered for kind %s", k))
		}
	}
	return nil
}

var _ ports.RepositoryResolver = (*Registry)(nil)
