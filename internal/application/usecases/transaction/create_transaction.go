// Package transaction содержит use cases для работы с покупками.
//
// Transaction - историческая запись: ссылки на пользователя и товар
// обнуляются при их удалении, сама запись остаётся.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/domain/valueobjects"
)

// CreateTransactionUseCase - use case для создания покупки.
//
// Сценарий:
// 1. Проверить, что пользователь и товар существуют
// 2. Посчитать full_price = price * amount
// 3. Сохранить транзакцию
//
// Бизнес-правила:
// - amount > 0
// - Цена фиксируется в момент покупки и не меняется вместе с товаром
type CreateTransactionUseCase struct {
	repos   ports.RepositoryResolver
	checker *consistency.Checker
	uow     ports.UnitOfWork
	logger  *slog.Logger
}

// NewCreateTransactionUseCase создаёт новый use case.
func NewCreateTransactionUseCase(
	repos ports.RepositoryResolver,
	checker *consistency.Checker,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *CreateTransactionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateTransactionUseCase{
		repos:   repos,
		checker: checker,
		uow:     uow,
		logger:  logger,
	}
}

// Execute выполняет создание транзакции.
//
// Errors:
//   - ValidationError: amount <= 0
//   - NotFoundError: нет пользователя или товара
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, cmd dtos.CreateTransactionCommand) (*dtos.TransactionDTO, error) {
	if cmd.Amount <= 0 {
		return nil, errors.ValidationError{Field: "amount", Message: "amount must be positive"}
	}

	tx, err := ports.ExecuteWithResult(ctx, uc.uow, func(ctx context.Context, scope ports.Scope) (*entities.Transaction, error) {
		// 1. Ссылки
		if _, err := uc.checker.RequireID(ctx, scope, entities.KindUser, cmd.UserID); err != nil {
			return nil, err
		}
		rec, err := uc.checker.RequireID(ctx, scope, entities.KindProduct, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		product := rec.(*entities.Product)

		// 2. Цена
		price, err := valueobjects.PriceFromDecimal(product.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d has invalid price: %w", product.ID, err)
		}
		total, err := price.Times(cmd.Amount)
		if err != nil {
			return nil, errors.ValidationError{Field: "amount", Message: err.Error()}
		}

		// 3. Сохранение
		tx := &entities.Transaction{
			Amount:    cmd.Amount,
			FullPrice: total.Decimal(),
			UserID:    entities.Int64Ptr(cmd.UserID),
			ProductID: entities.Int64Ptr(cmd.ProductID),
			CreatedAt: time.Now().UTC(),
		}
		repo, err := uc.repos.Resolve(entities.KindTransaction, scope)
		if err != nil {
			return nil, err
		}
		if err := repo.Insert(ctx, tx); err != nil {
			return nil, err
		}
		return tx, nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "transaction created",
		"transaction_id", tx.ID,
		"user_id", cmd.UserID,
		"product_id", cmd.ProductID,
		"full_price", tx.FullPrice.StringFixed(valueobjects.PriceScale),
	)
	result := dtos.ToTransactionDTO(tx)
	return &result, nil
}
