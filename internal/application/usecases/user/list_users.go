package user

import (
	"context"
	"fmt"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// ListUsersUseCase - use case для получения списка пользователей с пагинацией.
type ListUsersUseCase struct {
	users *Users
}

// NewListUsersUseCase создаёт новый use case.
func NewListUsersUseCase(users *Users) *ListUsersUseCase {
	return &ListUsersUseCase{users: users}
}

// Execute возвращает страницу пользователей (без ролей и фото).
func (uc *ListUsersUseCase) Execute(ctx context.Context, query dtos.ListQuery) ([]dtos.UserDTO, error) {
	repo, err := uc.users.users(uc.users.uow.Scope())
	if err != nil {
		return nil, err
	}
	recs, err := repo.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	from, to := query.Window(len(recs))
	users, err := entities.AsSlice[*entities.User](recs[from:to])
	if err != nil {
		return nil, err
	}
	return dtos.ToUserDTOList(users), nil
}
