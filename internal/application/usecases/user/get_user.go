package user

import (
	"context"

	"github.com/Haleralex/storehub/internal/application/dtos"
)

// GetUserUseCase - use case для получения пользователя по ID.
type GetUserUseCase struct {
	users *Users
}

// NewGetUserUseCase создаёт новый use case.
func NewGetUserUseCase(users *Users) *GetUserUseCase {
	return &GetUserUseCase{users: users}
}

// Execute возвращает пользователя с ролями и фотографиями.
func (uc *GetUserUseCase) Execute(ctx context.Context, userID int64) (*dtos.UserDTO, error) {
	user, err := uc.users.load(ctx, uc.users.uow.Scope(), userID)
	if err != nil {
		return nil, err
	}

	result := dtos.ToUserDTO(user)
	return &result, nil
}
