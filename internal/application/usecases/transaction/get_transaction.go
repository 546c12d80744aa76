package transaction

import (
	"context"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// GetTransactionUseCase - use case для получения транзакции по ID.
type GetTransactionUseCase struct {
	checker *consistency.Checker
	uow     ports.UnitOfWork
}

// NewGetTransactionUseCase создаёт новый use case.
func NewGetTransactionUseCase(checker *consistency.Checker, uow ports.UnitOfWork) *GetTransactionUseCase {
	return &GetTransactionUseCase{checker: checker, uow: uow}
}

// Execute возвращает транзакцию по ID или NotFound("Transaction", "id", id).
func (uc *GetTransactionUseCase) Execute(ctx context.Context, id int64) (*dtos.TransactionDTO, error) {
	rec, err := uc.checker.RequireID(ctx, uc.uow.Scope(), entities.KindTransaction, id)
	if err != nil {
		return nil, err
	}
	result := dtos.ToTransactionDTO(rec.(*entities.Transaction))
	return &result, nil
}

// DeleteTransactionUseCase удаляет транзакцию.
type DeleteTransactionUseCase struct {
	repos   ports.RepositoryResolver
	checker *consistency.Checker
	uow     ports.UnitOfWork
}

// NewDeleteTransactionUseCase создаёт новый use case.
func NewDeleteTransactionUseCase(repos ports.RepositoryResolver, checker *consistency.Checker, uow ports.UnitOfWork) *DeleteTransactionUseCase {
	return &DeleteTransactionUseCase{repos: repos, checker: checker, uow: uow}
}

// Execute удаляет транзакцию и возвращает её последнее состояние.
func (uc *DeleteTransactionUseCase) Execute(ctx context.Context, id int64) (*dtos.TransactionDTO, error) {
	tx, err := ports.ExecuteWithResult(ctx, uc.uow, func(ctx context.Context, scope ports.Scope) (*entities.Transaction, error) {
		rec, err := uc.checker.RequireID(ctx, scope, entities.KindTransaction, id)
		if err != nil {
			return nil, err
		}
		repo, err := uc.repos.Resolve(entities.KindTransaction, scope)
		if err != nil {
			return nil, err
		}
		if _, err := repo.Delete(ctx, entities.ByID(id)); err != nil {
			return nil, err
		}
		return rec.(*entities.Transaction), nil
	})
	if err != nil {
		return nil, err
	}
	result := dtos.ToTransactionDTO(tx)
	return &result, nil
}
