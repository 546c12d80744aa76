package user

import (
	"context"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/events"
)

// DeleteUserUseCase удаляет пользователя.
//
// Сценарий (одна транзакция):
// 1. Пользователь должен существовать
// 2. Comment и Transaction отвязываются (user_id = NULL)
// 3. Photo, RefreshToken и UserRole удаляются
// 4. Удаляется строка пользователя
//
// Файлы фотографий и событие UserDeleted - после commit.
type DeleteUserUseCase struct {
	users          *Users
	eventPublisher ports.EventPublisher
}

// NewDeleteUserUseCase создаёт новый use case.
func NewDeleteUserUseCase(users *Users, eventPublisher ports.EventPublisher) *DeleteUserUseCase {
	return &DeleteUserUseCase{users: users, eventPublisher: eventPublisher}
}

// Execute выполняет удаление.
func (uc *DeleteUserUseCase) Execute(ctx context.Context, userID int64) (*dtos.DeleteResultDTO, error) {
	return ports.ExecuteWithResult(ctx, uc.users.uow, func(ctx context.Context, scope ports.Scope) (*dtos.DeleteResultDTO, error) {
		user, err := uc.users.require(ctx, scope, userID)
		if err != nil {
			return nil, err
		}

		report, err := uc.users.unbinder.UnbindAll(ctx, scope, entities.KindUser, userID)
		if err != nil {
			return nil, err
		}

		repo, err := uc.users.users(scope)
		if err != nil {
			return nil, err
		}
		if _, err := repo.Delete(ctx, entities.ByID(userID)); err != nil {
			return nil, err
		}

		email := user.Email
		scope.AfterCommit(func(ctx context.Context) {
			uc.users.publish(ctx, uc.eventPublisher, events.NewUserDeleted(userID, email))
		})

		unbound := make(map[string]int64, len(report))
		for kind, n := range report {
			unbound[string(kind)] = n
		}
		return &dtos.DeleteResultDTO{ID: userID, Unbound: unbound}, nil
	})
}
