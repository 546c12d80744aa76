package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
)

// AddRoleUseCase назначает роль пользователю.
//
// Errors:
//   - NotFoundError: нет пользователя или роли
//   - DuplicateError: "User already has role [x]"
type AddRoleUseCase struct {
	users *Users
}

// NewAddRoleUseCase создаёт новый use case.
func NewAddRoleUseCase(users *Users) *AddRoleUseCase {
	return &AddRoleUseCase{users: users}
}

// Execute выполняет назначение.
func (uc *AddRoleUseCase) Execute(ctx context.Context, cmd dtos.UserRoleCommand) (*dtos.UserDTO, error) {
	value := strings.TrimSpace(cmd.Value)

	user, err := ports.ExecuteWithResult(ctx, uc.users.uow, func(ctx context.Context, scope ports.Scope) (*entities.User, error) {
		join, has, err := uc.users.membership(ctx, scope, cmd.UserID, value)
		if err != nil {
			return nil, err
		}
		if has {
			dup := errors.NewDuplicate(string(entities.KindUser), []string{"role=" + value})
			dup.Message = fmt.Sprintf("User already has role [%s]", value)
			return nil, dup
		}

		joins, err := uc.users.repos.Resolve(entities.KindUserRole, scope)
		if err != nil {
			return nil, err
		}
		if err := joins.Insert(ctx, join); err != nil {
			return nil, err
		}
		return uc.users.load(ctx, scope, cmd.UserID)
	})
	if err != nil {
		return nil, err
	}

	result := dtos.ToUserDTO(user)
	return &result, nil
}

// RemoveRoleUseCase снимает роль с пользователя.
//
// Errors:
//   - NotFoundError: нет пользователя, роли или "User didn't have role [x]"
type RemoveRoleUseCase struct {
	users *Users
}

// NewRemoveRoleUseCase создаёт новый use case.
func NewRemoveRoleUseCase(users *Users) *RemoveRoleUseCase {
	return &RemoveRoleUseCase{users: users}
}

// Execute выполняет снятие роли.
func (uc *RemoveRoleUseCase) Execute(ctx context.Context, cmd dtos.UserRoleCommand) (*dtos.UserDTO, error) {
	value := strings.TrimSpace(cmd.Value)

	user, err := ports.ExecuteWithResult(ctx, uc.users.uow, func(ctx context.Context, scope ports.Scope) (*entities.User, error) {
		join, has, err := uc.users.membership(ctx, scope, cmd.UserID, value)
		if err != nil {
			return nil, err
		}
		if !has {
			nf := errors.NewNotFound(string(entities.KindUser), "role", value)
			nf.Message = fmt.Sprintf("User didn't have role [%s]", value)
			return nil, nf
		}

		joins, err := uc.users.repos.Resolve(entities.KindUserRole, scope)
		if err != nil {
			return nil, err
		}
		if _, err := joins.Delete(ctx, join.Key()); err != nil {
			return nil, err
		}
		return uc.users.load(ctx, scope, cmd.UserID)
	})
	if err != nil {
		return nil, err
	}

	result := dtos.ToUserDTO(user)
	return &result, nil
}

// membership resolves user and role and reports whether they are linked.
func (u *Users) membership(ctx context.Context, scope ports.Scope, userID int64, value string) (*entities.UserRole, bool, error) {
	if _, err := u.require(ctx, scope, userID); err != nil {
		return nil, false, err
	}
	role, err := u.roles.GetByName(ctx, scope, value)
	if err != nil {
		return nil, false, err
	}

	join := &entities.UserRole{UserID: userID, RoleID: role.ID}
	joins, err := u.repos.Resolve(entities.KindUserRole, scope)
	if err != nil {
		return nil, false, err
	}
	recs, err := joins.Find(ctx, join.Key())
	if err != nil {
		return nil, false, err
	}
	return join, len(recs) > 0, nil
}
