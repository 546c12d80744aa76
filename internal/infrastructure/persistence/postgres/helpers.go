// Package postgres - вспомогательные функции для работы с PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Haleralex/storehub/internal/domain/entities"
	domainErrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// querier - абстракция для выполнения запросов.
// Позволяет использовать как pool, так и transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgreSQL error codes (из спецификации)
const (
	// Constraint violations
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	// Serialization failures (for optimistic locking)
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// pgError извлекает *pgconn.PgError из цепочки ошибок.
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// isPgError проверяет, является ли ошибка PostgreSQL ошибкой с определённым кодом.
func isPgError(err error, code string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == code
}

// isUniqueViolation проверяет, является ли ошибка нарушением UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return isPgError(err, pgUniqueViolation)
}

// isForeignKeyViolation проверяет нарушение foreign key constraint.
func isForeignKeyViolation(err error) bool {
	return isPgError(err, pgForeignKeyViolation)
}

// isSerializationFailure проверяет ошибку сериализации (для retry).
func isSerializationFailure(err error) bool {
	return isPgError(err, pgSerializationFailure) || isPgError(err, pgDeadlockDetected)
}

// isRetryableError проверяет, можно ли повторить операцию.
// Retryable: deadlock, serialization failure, connection errors.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if isSerializationFailure(err) {
		return true
	}
	pgErr, ok := pgError(err)
	// Class 08 - Connection Exception
	return ok && strings.HasPrefix(pgErr.Code, "08")
}

// shouldReplay решает, можно ли повторить транзакцию целиком.
// Ошибка на COMMIT (кроме serialization failure, при которой сервер
// гарантированно откатил транзакцию) оставляет исход неизвестным:
// транзакция могла примениться, повтор дал бы ложный DuplicateError.
func shouldReplay(err error) bool {
	var infra *domainErrors.InfrastructureError
	if errors.As(err, &infra) && infra.Op == opCommit {
		return isSerializationFailure(err)
	}
	return isRetryableError(err)
}

// "Key (first_name, last_name)=(John, Doe) already exists."
var uniqueDetail = regexp.MustCompile(`^Key \((.+)\)=\((.*)\) already exists`)

// duplicateFromPg превращает 23505 в DuplicateError того же вида,
// что выдаёт проверка дубликатов до записи (гонка двух транзакций).
func duplicateFromPg(kind entities.Kind, err error) error {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != pgUniqueViolation {
		return err
	}

	group := pgErr.ConstraintName
	if m := uniqueDetail.FindStringSubmatch(pgErr.Detail); m != nil {
		cols := strings.Split(m[1], ", ")
		vals := strings.Split(m[2], ", ")
		if len(cols) == len(vals) {
			pairs := make([]string, len(cols))
			for i := range cols {
				pairs[i] = fmt.Sprintf("%s=%s", cols[i], vals[i])
			}
			group = strings.Join(pairs, " + ")
		}
	}
	return domainErrors.NewDuplicate(string(kind), []string{group})
}
