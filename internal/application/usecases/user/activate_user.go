package user

import (
	"context"
	"strings"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/events"
)

// ActivateUserUseCase активирует пользователя по ссылке из письма.
//
// Повторная активация идемпотентна: событие публикуется только при
// первом переходе is_activated false -> true.
type ActivateUserUseCase struct {
	users          *Users
	eventPublisher ports.EventPublisher
}

// NewActivateUserUseCase создаёт новый use case.
func NewActivateUserUseCase(users *Users, eventPublisher ports.EventPublisher) *ActivateUserUseCase {
	return &ActivateUserUseCase{users: users, eventPublisher: eventPublisher}
}

// Execute находит пользователя по activation link и активирует его.
// Неизвестная ссылка: NotFound("User", "activation_link", link).
func (uc *ActivateUserUseCase) Execute(ctx context.Context, link string) (*dtos.UserDTO, error) {
	link = strings.TrimSpace(link)

	user, err := ports.ExecuteWithResult(ctx, uc.users.uow, func(ctx context.Context, scope ports.Scope) (*entities.User, error) {
		rec, err := uc.users.checker.RequireExists(ctx, scope, entities.KindUser, "activation_link", link)
		if err != nil {
			return nil, err
		}
		user := rec.(*entities.User)
		if user.IsActivated {
			return uc.users.load(ctx, scope, user.ID)
		}

		repo, err := uc.users.users(scope)
		if err != nil {
			return nil, err
		}
		if _, err := repo.Update(ctx, entities.ByID(user.ID), entities.Fields{"is_activated": true}); err != nil {
			return nil, err
		}

		id := user.ID
		scope.AfterCommit(func(ctx context.Context) {
			uc.users.publish(ctx, uc.eventPublisher, events.NewUserActivated(id))
		})
		return uc.users.load(ctx, scope, id)
	})
	if err != nil {
		return nil, err
	}

	result := dtos.ToUserDTO(user)
	return &result, nil
}
