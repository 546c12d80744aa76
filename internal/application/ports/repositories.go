// Package ports определяет интерфейсы (порты) для внешних зависимостей.
// Эти интерфейсы реализуются в Infrastructure Layer.
//
// Pattern: Repository Pattern + Ports & Adapters (Hexagonal Architecture)
package ports

import (
	"context"

	"github.com/Haleralex/storehub/internal/domain/entities"
)

// Repository - capability-интерфейс доступа к записям одного kind.
//
// Один и тот же контракт реализуют postgres (generic table repository)
// и memory backend, поэтому registry, duplicate engine и unbinder
// работают с любым kind одинаково.
type Repository interface {
	// Kind returns the entity kind served by this repository.
	Kind() entities.Kind

	// Find returns records matching any of the criteria (OR of ANDs).
	// No criteria returns every record of the kind.
	Find(ctx context.Context, anyOf ...entities.Criteria) ([]entities.Record, error)

	// Insert stores rec. For Identifiable records the generated id is set on rec.
	Insert(ctx context.Context, rec entities.Record) error

	// Update sets fields on every record matching where and returns the affected count.
	Update(ctx context.Context, where entities.Criteria, set entities.Fields) (int64, error)

	// Delete removes every record matching where and returns the affected count.
	Delete(ctx context.Context, where entities.Criteria) (int64, error)
}

// RepositoryFactory returns a repository bound to scope.
// Backends register one factory per kind.
type RepositoryFactory func(scope Scope) (Repository, error)

// RepositoryResolver - фасад доступа к репозиториям (см. registry.Registry).
type RepositoryResolver interface {
	Resolve(kind entities.Kind, scope Scope) (Repository, error)
}
