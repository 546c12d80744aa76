package user

import (
	"context"
	"strings"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
)

// UpdateUserUseCase - частичное обновление профиля.
//
// Бизнес-правила:
// - Проверка уникальности только для затронутых групп; недостающие
//   поля группы берутся из текущей записи (смена только first_name
//   проверяется вместе с текущим last_name)
// - Собственное неизменённое значение коллизией не считается
type UpdateUserUseCase struct {
	users *Users
}

// NewUpdateUserUseCase создаёт новый use case.
func NewUpdateUserUseCase(users *Users) *UpdateUserUseCase {
	return &UpdateUserUseCase{users: users}
}

// Execute выполняет обновление.
func (uc *UpdateUserUseCase) Execute(ctx context.Context, cmd dtos.UpdateUserCommand) (*dtos.UserDTO, error) {
	patch, err := userPatch(cmd)
	if err != nil {
		return nil, err
	}

	user, err := ports.ExecuteWithResult(ctx, uc.users.uow, func(ctx context.Context, scope ports.Scope) (*entities.User, error) {
		existing, err := uc.users.require(ctx, scope, cmd.UserID)
		if err != nil {
			return nil, err
		}
		if err := uc.users.checker.CheckUpdate(ctx, scope, existing, patch); err != nil {
			return nil, err
		}
		if len(patch) > 0 {
			repo, err := uc.users.users(scope)
			if err != nil {
				return nil, err
			}
			if _, err := repo.Update(ctx, entities.ByID(cmd.UserID), patch); err != nil {
				return nil, err
			}
		}
		return uc.users.load(ctx, scope, cmd.UserID)
	})
	if err != nil {
		return nil, err
	}

	result := dtos.ToUserDTO(user)
	return &result, nil
}

func userPatch(cmd dtos.UpdateUserCommand) (entities.Fields, error) {
	var verrs errors.ValidationErrors
	patch := entities.Fields{}

	name := func(field string, v *string) {
		if v == nil {
			return
		}
		s := strings.TrimSpace(*v)
		if s == "" {
			verrs.Add(field, errors.ErrEmptyName.Error())
			return
		}
		patch[field] = s
	}
	name("first_name", cmd.FirstName)
	name("last_name", cmd.LastName)

	if cmd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*cmd.Email))
		if !entities.ValidEmail(email) {
			verrs.Add("email", errors.ErrInvalidEmail.Error())
		} else {
			patch["email"] = email
		}
	}
	if cmd.Phone != nil {
		patch["phone"] = strings.TrimSpace(*cmd.Phone)
	}
	if cmd.Birthday != nil {
		patch["birthday"] = *cmd.Birthday
	}

	if verrs.HasErrors() {
		return nil, verrs
	}
	return patch, nil
}
