// Package catalog содержит use cases справочников: Category, Vendor,
// Attribute и Role. У каждого справочника одно уникальное имя, по
// которому его ищут другие workflow (getByName).
package catalog

import (
	"context"
	"log/slog"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// Directory - CRUD справочника kind с уникальным полем nameField.
//
// Методы с параметром scope работают в переданной области (их зовут
// другие workflow внутри своей транзакции). Create/Update/Delete без
// scope - границы: сами открывают UnitOfWork.
type Directory[T entities.Identifiable] struct {
	kind      entities.Kind
	nameField string
	repos     ports.RepositoryResolver
	checker   *consistency.Checker
	unbinder  *consistency.Unbinder
	uow       ports.UnitOfWork
	logger    *slog.Logger
}

// NewDirectory creates a Directory.
func NewDirectory[T entities.Identifiable](
	kind entities.Kind,
	nameField string,
	repos ports.RepositoryResolver,
	checker *consistency.Checker,
	unbinder *consistency.Unbinder,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *Directory[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory[T]{
		kind:      kind,
		nameField: nameField,
		repos:     repos,
		checker:   checker,
		unbinder:  unbinder,
		uow:       uow,
		logger:    logger,
	}
}

// Kind returns the served kind.
func (d *Directory[T]) Kind() entities.Kind { return d.kind }

// GetByName returns the record with the given name or NotFound(kind, nameField, name).
func (d *Directory[T]) GetByName(ctx context.Context, scope ports.Scope, name string) (T, error) {
	rec, err := d.checker.RequireExists(ctx, scope, d.kind, d.nameField, name)
	if err != nil {
		var zero T
		return zero, err
	}
	return entities.As[T](rec)
}

// GetByID returns the record with id or NotFound.
func (d *Directory[T]) GetByID(ctx context.Context, scope ports.Scope, id int64) (T, error) {
	rec, err := d.checker.RequireID(ctx, scope, d.kind, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return entities.As[T](rec)
}

// List returns a page of records.
func (d *Directory[T]) List(ctx context.Context, scope ports.Scope, q dtos.ListQuery) ([]T, error) {
	repo, err := d.repos.Resolve(d.kind, scope)
	if err != nil {
		return nil, err
	}
	recs, err := repo.Find(ctx)
	if err != nil {
		return nil, err
	}
	from, to := q.Window(len(recs))
	return entities.AsSlice[T](recs[from:to])
}

// Find returns record id read through the default (non-transactional) scope.
func (d *Directory[T]) Find(ctx context.Context, id int64) (T, error) {
	return d.GetByID(ctx, d.uow.Scope(), id)
}

// FindAll returns a page of records read through the default scope.
func (d *Directory[T]) FindAll(ctx context.Context, q dtos.ListQuery) ([]T, error) {
	return d.List(ctx, d.uow.Scope(), q)
}

// Create inserts rec after the duplicate check.
func (d *Directory[T]) Create(ctx context.Context, rec T) (T, error) {
	err := d.uow.Execute(ctx, func(ctx context.Context, scope ports.Scope) error {
		if err := d.checker.CheckCreate(ctx, scope, rec); err != nil {
			return err
		}
		repo, err := d.repos.Resolve(d.kind, scope)
		if err != nil {
			return err
		}
		return repo.Insert(ctx, rec)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	d.logger.InfoContext(ctx, "record created",
		slog.String("kind", string(d.kind)),
		slog.Int64("id", rec.GetID()),
	)
	return rec, nil
}

// Update applies patch to record id. The duplicate check runs only when
// the patch touches a unique field.
func (d *Directory[T]) Update(ctx context.Context, id int64, patch entities.Fields) (T, error) {
	return ports.ExecuteWithResult(ctx, d.uow, func(ctx context.Context, scope ports.Scope) (T, error) {
		var zero T
		if _, ok := patch[entities.FieldID]; ok {
			return zero, domainerrors.NewInvalidArgument("Directory.Update", "id cannot be changed")
		}
		existing, err := d.checker.RequireID(ctx, scope, d.kind, id)
		if err != nil {
			return zero, err
		}
		if err := d.checker.CheckUpdate(ctx, scope, existing, patch); err != nil {
			return zero, err
		}
		repo, err := d.repos.Resolve(d.kind, scope)
		if err != nil {
			return zero, err
		}
		if len(patch) > 0 {
			if _, err := repo.Update(ctx, entities.ByID(id), patch); err != nil {
				return zero, err
			}
		}
		return d.GetByID(ctx, scope, id)
	})
}

// Delete unbinds dependents and removes record id.
func (d *Directory[T]) Delete(ctx context.Context, id int64) (T, error) {
	return ports.ExecuteWithResult(ctx, d.uow, func(ctx context.Context, scope ports.Scope) (T, error) {
		var zero T
		existing, err := d.GetByID(ctx, scope, id)
		if err != nil {
			return zero, err
		}
		if _, err := d.unbinder.UnbindAll(ctx, scope, d.kind, id); err != nil {
			return zero, err
		}
		repo, err := d.repos.Resolve(d.kind, scope)
		if err != nil {
			return zero, err
		}
		if _, err := repo.Delete(ctx, entities.ByID(id)); err != nil {
			return zero, err
		}
		return existing, nil
	})
}
