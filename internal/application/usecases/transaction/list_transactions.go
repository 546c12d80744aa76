package transaction

import (
	"context"
	"fmt"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// ListTransactionsUseCase - use case для получения покупок товара.
type ListTransactionsUseCase struct {
	repos   ports.RepositoryResolver
	checker *consistency.Checker
	uow     ports.UnitOfWork
}

// NewListTransactionsUseCase создаёт новый use case.
func NewListTransactionsUseCase(repos ports.RepositoryResolver, checker *consistency.Checker, uow ports.UnitOfWork) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{repos: repos, checker: checker, uow: uow}
}

// ByProduct возвращает покупки товара с пагинацией. Товар должен существовать.
func (uc *ListTransactionsUseCase) ByProduct(ctx context.Context, productID int64, query dtos.ListQuery) ([]dtos.TransactionDTO, error) {
	return uc.list(ctx, entities.KindProduct, entities.FieldProductID, productID, query)
}

// ByUser возвращает покупки пользователя.
func (uc *ListTransactionsUseCase) ByUser(ctx context.Context, userID int64, query dtos.ListQuery) ([]dtos.TransactionDTO, error) {
	return uc.list(ctx, entities.KindUser, entities.FieldUserID, userID, query)
}

func (uc *ListTransactionsUseCase) list(ctx context.Context, owner entities.Kind, field string, ownerID int64, query dtos.ListQuery) ([]dtos.TransactionDTO, error) {
	scope := uc.uow.Scope()
	if _, err := uc.checker.RequireID(ctx, scope, owner, ownerID); err != nil {
		return nil, err
	}

	repo, err := uc.repos.Resolve(entities.KindTransaction, scope)
	if err != nil {
		return nil, err
	}
	recs, err := repo.Find(ctx, entities.Criteria{field: ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	from, to := query.Window(len(recs))
	txs, err := entities.AsSlice[*entities.Transaction](recs[from:to])
	if err != nil {
		return nil, err
	}
	out := make([]dtos.TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, dtos.ToTransactionDTO(tx))
	}
	return out, nil
}
