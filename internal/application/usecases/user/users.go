// Package user содержит use cases для работы с пользователями.
//
// SOLID Principles:
// - SRP: Каждый use case отвечает за один сценарий
// - DIP: Зависит от интерфейсов (ports), не от конкретных реализаций
// - OCP: Новые use cases добавляются без изменения существующих
//
// Pattern: Use Case (Interactor)
// - Оркестрирует domain entities
// - Управляет транзакциями через явный scope
// - Публикует события после commit
package user

import (
	"context"
	"log/slog"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/application/usecases/catalog"
	"github.com/Haleralex/storehub/internal/application/usecases/photo"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/events"
)

// Users - общие зависимости use cases пользователя.
type Users struct {
	repos    ports.RepositoryResolver
	checker  *consistency.Checker
	unbinder *consistency.Unbinder
	roles    *catalog.Directory[*entities.Role]
	photos   *photo.Service
	uow      ports.UnitOfWork
	logger   *slog.Logger
}

// NewUsers создаёт набор зависимостей.
func NewUsers(
	repos ports.RepositoryResolver,
	checker *consistency.Checker,
	unbinder *consistency.Unbinder,
	roles *catalog.Directory[*entities.Role],
	photos *photo.Service,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *Users {
	if logger == nil {
		logger = slog.Default()
	}
	return &Users{
		repos:    repos,
		checker:  checker,
		unbinder: unbinder,
		roles:    roles,
		photos:   photos,
		uow:      uow,
		logger:   logger,
	}
}

func (u *Users) users(scope ports.Scope) (ports.Repository, error) {
	return u.repos.Resolve(entities.KindUser, scope)
}

// require returns the user or NotFound("User", "id", id).
func (u *Users) require(ctx context.Context, scope ports.Scope, id int64) (*entities.User, error) {
	rec, err := u.checker.RequireID(ctx, scope, entities.KindUser, id)
	if err != nil {
		return nil, err
	}
	return entities.As[*entities.User](rec)
}

// load returns the user with roles and photos.
func (u *Users) load(ctx context.Context, scope ports.Scope, id int64) (*entities.User, error) {
	user, err := u.require(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if user.Roles, err = u.rolesOf(ctx, scope, id); err != nil {
		return nil, err
	}
	if user.Photos, err = u.photos.ListByOwner(ctx, scope, entities.FieldUserID, id); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) rolesOf(ctx context.Context, scope ports.Scope, userID int64) ([]*entities.Role, error) {
	joins, err := u.repos.Resolve(entities.KindUserRole, scope)
	if err != nil {
		return nil, err
	}
	recs, err := joins.Find(ctx, entities.Criteria{entities.FieldUserID: userID})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return []*entities.Role{}, nil
	}

	criteria := make([]entities.Criteria, 0, len(recs))
	for _, rec := range recs {
		criteria = append(criteria, entities.ByID(rec.(*entities.UserRole).RoleID))
	}
	roles, err := u.repos.Resolve(entities.KindRole, scope)
	if err != nil {
		return nil, err
	}
	roleRecs, err := roles.Find(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	return entities.AsSlice[*entities.Role](roleRecs)
}

// publish is best effort: the operation has already committed.
func (u *Users) publish(ctx context.Context, publisher ports.EventPublisher, event events.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		u.logger.WarnContext(ctx, "failed to publish event",
			slog.String("event_type", event.EventType()),
			slog.Int64("aggregate_id", event.AggregateID()),
			slog.String("error", err.Error()),
		)
	}
}
