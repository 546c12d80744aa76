// Package ports - UnitOfWork паттерн для управления транзакциями.
//
// Pattern: Unit of Work + explicit Scope
// - Один Execute = одна БД-транзакция
// - Транзакция передаётся явно через Scope, а не прячется в context
// - Автоматический rollback при ошибке или panic
package ports

import "context"

// Scope - явный дескриптор области доступа к данным.
//
// Внутри UnitOfWork.Execute scope транзакционный: все репозитории,
// полученные через него, работают в одной транзакции. Scope, который
// возвращает UnitOfWork.Scope(), не транзакционный (autocommit).
type Scope interface {
	// Transactional reports whether the scope is bound to an open transaction.
	Transactional() bool

	// AfterCommit registers fn to run once the transaction has committed.
	// Hooks run in registration order and are dropped on rollback.
	// A non-transactional scope runs fn immediately.
	AfterCommit(fn func(ctx context.Context))
}

// UnitOfWork определяет контракт для управления транзакциями.
//
// Пример использования:
//
//	err := uow.Execute(ctx, func(ctx context.Context, scope ports.Scope) error {
//	    products, err := registry.Resolve(entities.KindProduct, scope)
//	    if err != nil {
//	        return err
//	    }
//	    return products.Insert(ctx, product) // error -> rollback
//	})
type UnitOfWork interface {
	// Execute выполняет fn внутри транзакции.
	//
	// Поведение:
	// - Начинает транзакцию
	// - Выполняет fn с транзакционным scope
	// - Если fn возвращает error или паникует: ROLLBACK
	// - Если fn возвращает nil: COMMIT, затем AfterCommit hooks
	// - Соединение освобождается на любом пути выхода
	//
	// Errors:
	// - бизнес-ошибки (NotFound, Duplicate, InvalidArgument, Validation) возвращаются как есть
	// - всё остальное оборачивается в InfrastructureError
	Execute(ctx context.Context, fn func(ctx context.Context, scope Scope) error) error

	// Scope returns the default non-transactional scope.
	Scope() Scope
}

// ExecuteWithResult аналогичен Execute, но возвращает результат.
// Полезно когда нужно вернуть созданную entity.
func ExecuteWithResult[T any](ctx context.Context, uow UnitOfWork, fn func(ctx context.Context, scope Scope) (T, error)) (T, error) {
	var result T
	err := uow.Execute(ctx, func(ctx context.Context, scope Scope) error {
		var err error
		result, err = fn(ctx, scope)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
