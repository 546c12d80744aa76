// Package consistency содержит проверки целостности, общие для всех use cases:
// существование записей, поиск дубликатов по unique-группам и
// каскадное отвязывание зависимых записей перед удалением родителя.
package consistency

import (
	"context"
	"log/slog"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/domain/uniqueness"
)

// Exists reports whether repo has a record with field=value.
func Exists(ctx context.Context, repo ports.Repository, field string, value any) (bool, error) {
	recs, err := repo.Find(ctx, entities.Criteria{field: value})
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

// RequireExists returns the first record with field=value or NotFound(kind, field, value).
func RequireExists(ctx context.Context, repo ports.Repository, field string, value any) (entities.Record, error) {
	recs, err := repo.Find(ctx, entities.Criteria{field: value})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, domainerrors.NewNotFound(string(repo.Kind()), field, value)
	}
	return recs[0], nil
}

// Checker - existence checker и duplicate engine поверх registry.
type Checker struct {
	repos  ports.RepositoryResolver
	logger *slog.Logger
}

// NewChecker creates a Checker.
func NewChecker(repos ports.RepositoryResolver, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{repos: repos, logger: logger}
}

// Exists reports whether a record of kind with field=value exists in scope.
func (c *Checker) Exists(ctx context.Context, scope ports.Scope, kind entities.Kind, field string, value any) (bool, error) {
	repo, err := c.repos.Resolve(kind, scope)
	if err != nil {
		return false, err
	}
	return Exists(ctx, repo, field, value)
}

// RequireExists fetches the record of kind with field=value or fails NotFound.
func (c *Checker) RequireExists(ctx context.Context, scope ports.Scope, kind entities.Kind, field string, value any) (entities.Record, error) {
	repo, err := c.repos.Resolve(kind, scope)
	if err != nil {
		return nil, err
	}
	return RequireExists(ctx, repo, field, value)
}

// RequireID is RequireExists by primary key.
func (c *Checker) RequireID(ctx context.Context, scope ports.Scope, kind entities.Kind, id int64) (entities.Record, error) {
	return c.RequireExists(ctx, scope, kind, entities.FieldID, id)
}

// FindDuplicate checks candidate against the unique groups of kind.
//
// existing - текущая запись при update (nil при create). Её собственная
// строка исключается из совпадений, поэтому неизменённое значение
// уникального поля не считается коллизией.
//
// Выполняет один Find с OR всех условий. Ничего не изменяет.
func (c *Checker) FindDuplicate(ctx context.Context, scope ports.Scope, kind entities.Kind, existing entities.Record, candidate entities.Fields, update bool) error {
	groups := uniqueness.GroupsOf(entities.UniqueGroups(kind))
	if len(groups) == 0 {
		return nil
	}

	var existingFields entities.Fields
	if existing != nil {
		existingFields = existing.Values()
	}

	conds := uniqueness.Conditions(existingFields, candidate, groups, update)
	if len(conds) == 0 {
		return nil
	}

	repo, err := c.repos.Resolve(kind, scope)
	if err != nil {
		return err
	}
	recs, err := repo.Find(ctx, uniqueness.Criteria(conds)...)
	if err != nil {
		return err
	}

	rows := make([]entities.Fields, 0, len(recs))
	for _, rec := range recs {
		if existing != nil && entities.SameKey(rec, existing) {
			continue
		}
		rows = append(rows, rec.Values())
	}

	if err := uniqueness.Evaluate(kind, conds, rows); err != nil {
		duplicateRejections.WithLabelValues(string(kind)).Inc()
		c.logger.DebugContext(ctx, "duplicate rejected",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// CheckCreate runs the duplicate check for a new record.
func (c *Checker) CheckCreate(ctx context.Context, scope ports.Scope, rec entities.Record) error {
	return c.FindDuplicate(ctx, scope, rec.Kind(), nil, rec.Values(), false)
}

// CheckUpdate runs the duplicate check only when patch touches a unique field.
func (c *Checker) CheckUpdate(ctx context.Context, scope ports.Scope, existing entities.Record, patch entities.Fields) error {
	groups := uniqueness.GroupsOf(entities.UniqueGroups(existing.Kind()))
	if !uniqueness.Touches(patch, groups) {
		return nil
	}
	return c.FindDuplicate(ctx, scope, existing.Kind(), existing, patch, true)
}
