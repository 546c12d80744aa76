package transaction

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/domain/valueobjects"
)

// UpdateTransactionUseCase - частичное обновление покупки.
//
// Бизнес-правила:
// - Транзакция, а также новые пользователь и товар должны существовать
// - amount > 0, full_price >= 0 с двумя знаками
// - Новый amount без full_price: full_price = цена единицы * amount
type UpdateTransactionUseCase struct {
	repos   ports.RepositoryResolver
	checker *consistency.Checker
	uow     ports.UnitOfWork
	logger  *slog.Logger
}

// NewUpdateTransactionUseCase создаёт новый use case.
func NewUpdateTransactionUseCase(
	repos ports.RepositoryResolver,
	checker *consistency.Checker,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *UpdateTransactionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateTransactionUseCase{repos: repos, checker: checker, uow: uow, logger: logger}
}

// Execute применяет patch и возвращает обновлённую транзакцию.
//
// Errors:
//   - ValidationError: amount <= 0 или некорректная full_price
//   - NotFoundError: нет транзакции, пользователя или товара
func (uc *UpdateTransactionUseCase) Execute(ctx context.Context, cmd dtos.UpdateTransactionCommand) (*dtos.TransactionDTO, error) {
	var fullPrice *valueobjects.Price
	if cmd.Amount != nil && *cmd.Amount <= 0 {
		return nil, errors.ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if cmd.FullPrice != nil {
		p, err := valueobjects.NewPrice(*cmd.FullPrice)
		if err != nil {
			return nil, errors.ValidationError{Field: "full_price", Message: err.Error()}
		}
		fullPrice = &p
	}

	tx, err := ports.ExecuteWithResult(ctx, uc.uow, func(ctx context.Context, scope ports.Scope) (*entities.Transaction, error) {
		rec, err := uc.checker.RequireID(ctx, scope, entities.KindTransaction, cmd.TransactionID)
		if err != nil {
			return nil, err
		}
		existing := rec.(*entities.Transaction)

		patch := entities.Fields{}
		if cmd.UserID != nil {
			if _, err := uc.checker.RequireID(ctx, scope, entities.KindUser, *cmd.UserID); err != nil {
				return nil, err
			}
			patch[entities.FieldUserID] = *cmd.UserID
		}
		if cmd.ProductID != nil {
			if _, err := uc.checker.RequireID(ctx, scope, entities.KindProduct, *cmd.ProductID); err != nil {
				return nil, err
			}
			patch[entities.FieldProductID] = *cmd.ProductID
		}
		if cmd.Amount != nil {
			patch["amount"] = *cmd.Amount
			if fullPrice == nil && *cmd.Amount != existing.Amount {
				total, err := repriced(existing, *cmd.Amount)
				if err != nil {
					return nil, err
				}
				fullPrice = &total
			}
		}
		if fullPrice != nil {
			patch["full_price"] = fullPrice.Decimal()
		}
		if len(patch) == 0 {
			return existing, nil
		}

		repo, err := uc.repos.Resolve(entities.KindTransaction, scope)
		if err != nil {
			return nil, err
		}
		if _, err := repo.Update(ctx, entities.ByID(cmd.TransactionID), patch); err != nil {
			return nil, err
		}
		if err := existing.Assign(patch); err != nil {
			return nil, err
		}
		return existing, nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "transaction updated",
		"transaction_id", tx.ID,
		"amount", tx.Amount,
		"full_price", tx.FullPrice.StringFixed(valueobjects.PriceScale),
	)
	result := dtos.ToTransactionDTO(tx)
	return &result, nil
}

// repriced keeps the unit price the purchase was made at.
func repriced(tx *entities.Transaction, amount int) (valueobjects.Price, error) {
	if tx.Amount <= 0 {
		return valueobjects.Price{}, errors.ValidationError{Field: "full_price", Message: "required when the stored amount is not positive"}
	}
	unit, err := valueobjects.PriceFromDecimal(tx.FullPrice.Div(decimal.NewFromInt(int64(tx.Amount))).Round(valueobjects.PriceScale))
	if err != nil {
		return valueobjects.Price{}, err
	}
	total, err := unit.Times(amount)
	if err != nil {
		return valueobjects.Price{}, errors.ValidationError{Field: "amount", Message: err.Error()}
	}
	return total, nil
}
