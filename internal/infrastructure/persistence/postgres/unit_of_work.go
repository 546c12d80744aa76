// Package postgres - UnitOfWork implementation для PostgreSQL.
//
// Unit of Work Pattern:
// - Управляет границами транзакций
// - Обеспечивает атомарность операций
// - Автоматический ROLLBACK при ошибках и panic
// - Automatic COMMIT при успехе, затем after-commit hooks
//
// Usage:
//
//	err := uow.Execute(ctx, func(ctx context.Context, scope ports.Scope) error {
//	    // Все репозитории берутся из registry с этим scope
//	    products, _ := registry.Resolve(entities.KindProduct, scope)
//	    return products.Insert(ctx, product) // nil = COMMIT, err = ROLLBACK
//	})
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainErrors "github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/infrastructure/persistence"
)

// Compile-time check
var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork реализует ports.UnitOfWork с PostgreSQL транзакциями.
//
// Thread-safe: использует connection pool.
// Transaction isolation: по умолчанию READ COMMITTED.
type UnitOfWork struct {
	pool   *pgxpool.Pool
	opts   pgx.TxOptions
	logger *slog.Logger
}

// NewUnitOfWork создаёт новый UnitOfWork.
func NewUnitOfWork(pool *pgxpool.Pool, logger *slog.Logger) *UnitOfWork {
	return NewUnitOfWorkWithIsolation(pool, pgx.ReadCommitted, logger)
}

// NewUnitOfWorkWithIsolation создаёт UnitOfWork с указанным уровнем изоляции.
//
// Уровни изоляции:
// - pgx.ReadCommitted (default): стандартный уровень, подходит для большинства случаев
// - pgx.RepeatableRead: гарантирует консистентность чтения в рамках транзакции
// - pgx.Serializable: полная изоляция (может потребовать ExecuteWithRetry)
func NewUnitOfWorkWithIsolation(pool *pgxpool.Pool, isolation pgx.TxIsoLevel, logger *slog.Logger) *UnitOfWork {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWork{
		pool:   pool,
		opts:   pgx.TxOptions{IsoLevel: isolation},
		logger: logger,
	}
}

// Scope returns the default scope: statements run on the pool in autocommit.
func (u *UnitOfWork) Scope() ports.Scope {
	return &scope{q: u.pool, immediate: persistence.ImmediateScope{Logger: u.logger}}
}

// Execute выполняет fn внутри транзакции.
//
// Состояния: Idle -> Connected -> InTransaction -> Committed | RolledBack -> Released.
// - fn вернул nil: COMMIT, затем hooks по порядку
// - fn вернул ошибку: ROLLBACK; бизнес-ошибки возвращаются как есть,
//   остальные оборачиваются в InfrastructureError
// - panic: ROLLBACK + re-panic
// Соединение возвращается в пул на любом пути.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, scope ports.Scope) error) error {
	started := time.Now()

	conn, err := u.pool.Acquire(ctx)
	if err != nil {
		observe(outcomeBeginError, started)
		return domainErrors.NewInfrastructure("connect", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, u.opts)
	if err != nil {
		observe(outcomeBeginError, started)
		return domainErrors.NewInfrastructure("begin", err)
	}

	sc := &scope{q: tx, tx: tx}
	finished := false
	defer func() {
		sc.closed = true
		if finished {
			return
		}
		// panic внутри fn: соединение не должно уйти в пул с открытой транзакцией
		sc.hooks.Discard()
		u.rollback(ctx, tx)
		observe(outcomeRollback, started)
	}()

	if err := fn(ctx, sc); err != nil {
		finished = true
		sc.hooks.Discard()
		u.rollback(ctx, tx)
		observe(outcomeRollback, started)
		return persistence.Classify("execute", err)
	}

	if err := tx.Commit(ctx); err != nil {
		finished = true
		sc.hooks.Discard()
		observe(outcomeCommitError, started)
		return domainErrors.NewInfrastructure(opCommit, err)
	}
	finished = true
	observe(outcomeCommit, started)

	sc.closed = true
	if failed := sc.hooks.Run(ctx, u.logger); failed > 0 {
		hookFailures.Add(float64(failed))
	}
	return nil
}

const opCommit = "commit"

// ExecuteWithRetry повторяет транзакцию при serialization failure / deadlock.
// Обрыв соединения на COMMIT не повторяется: исход неизвестен.
//
// maxRetries: максимальное количество повторов (0 = без retry).
// fn должен быть идемпотентным: при retry он выполняется заново целиком.
func (u *UnitOfWork) ExecuteWithRetry(ctx context.Context, maxRetries int, fn func(ctx context.Context, scope ports.Scope) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := u.Execute(ctx, fn)
		if err == nil {
			return nil
		}
		if !shouldReplay(err) {
			return err
		}
		lastErr = err
		u.logger.WarnContext(ctx, "retrying transaction", "attempt", attempt+1, "error", err)
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Retrying возвращает UnitOfWork, у которого Execute повторяется
// при serialization failure / deadlock. maxRetries <= 0 - без повторов.
func (u *UnitOfWork) Retrying(maxRetries int) ports.UnitOfWork {
	if maxRetries <= 0 {
		return u
	}
	return retryingUnitOfWork{UnitOfWork: u, maxRetries: maxRetries}
}

type retryingUnitOfWork struct {
	*UnitOfWork
	maxRetries int
}

func (r retryingUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, scope ports.Scope) error) error {
	return r.ExecuteWithRetry(ctx, r.maxRetries, fn)
}

func (u *UnitOfWork) rollback(ctx context.Context, tx pgx.Tx) {
	// Контекст запроса мог быть отменён - откатываем в отдельном.
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		u.logger.ErrorContext(ctx, "rollback failed", "error", err)
	}
}

// Factory returns a RepositoryFactory for kind backed by Schema.
func Factory(kind entities.Kind) ports.RepositoryFactory {
	return func(s ports.Scope) (ports.Repository, error) {
		table, ok := Schema[kind]
		if !ok {
			return nil, domainErrors.NewConfigurationError("postgres.Factory",
				fmt.Sprintf("no table for kind %s", kind))
		}
		sc, ok := s.(*scope)
		if !ok {
			return nil, domainErrors.NewInvalidArgument("postgres.Factory",
				fmt.Sprintf("scope %T is not a postgres scope", s))
		}
		if sc.closed {
			return nil, domainErrors.NewInvalidArgument("postgres.Factory", "transaction already finished")
		}
		return &TableRepository{kind: kind, table: table, q: sc.q}, nil
	}
}

// ============================================
// Scope
// ============================================

type scope struct {
	q         querier
	tx        pgx.Tx // nil for the default scope
	hooks     persistence.Hooks
	immediate persistence.ImmediateScope
	closed    bool
}

func (s *scope) Transactional() bool { return s.tx != nil }

func (s *scope) AfterCommit(fn func(ctx context.Context)) {
	if s.tx == nil {
		s.immediate.AfterCommit(fn)
		return
	}
	s.hooks.Add(fn)
}
