// Package memory - in-memory backend для Repository и UnitOfWork.
//
// Используется в тестах use cases и для локального запуска без БД
// (database.driver=memory). Транзакция работает на копии данных:
// commit подменяет состояние снимком, rollback снимок выбрасывает.
// Транзакции сериализуются между собой.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/infrastructure/persistence"
)

// Operation names passed to a FaultFunc.
const (
	OpFind   = "find"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpCommit = "commit"
)

// FaultFunc lets tests fail a specific operation. Returning nil lets it run.
type FaultFunc func(kind entities.Kind, op string) error

// state - данные всех kind.
type state struct {
	rows map[entities.Kind][]entities.Fields
	seq  map[entities.Kind]int64
}

func newState() *state {
	return &state{
		rows: make(map[entities.Kind][]entities.Fields),
		seq:  make(map[entities.Kind]int64),
	}
}

func (s *state) clone() *state {
	cp := newState()
	for k, rows := range s.rows {
		out := make([]entities.Fields, len(rows))
		for i, r := range rows {
			out[i] = copyFields(r)
		}
		cp.rows[k] = out
	}
	for k, v := range s.seq {
		cp.seq[k] = v
	}
	return cp
}

func copyFields(f entities.Fields) entities.Fields {
	out := make(entities.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Store - in-memory хранилище + UnitOfWork.
type Store struct {
	mu     sync.Mutex // protects data
	txMu   sync.Mutex // serializes transactions
	data   *state
	fault  FaultFunc
	logger *slog.Logger
}

// Compile-time check
var _ ports.UnitOfWork = (*Store)(nil)

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{data: newState(), logger: logger}
}

// SetFault installs a fault injector (nil removes it).
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	s.fault = fn
	s.mu.Unlock()
}

func (s *Store) checkFault(kind entities.Kind, op string) error {
	s.mu.Lock()
	fn := s.fault
	s.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(kind, op)
}

// Count returns the number of committed rows of kind matching where (nil = all).
func (s *Store) Count(kind entities.Kind, where entities.Criteria) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.data.rows[kind] {
		if where == nil || where.Matches(r) {
			n++
		}
	}
	return n
}

// ============================================
// UnitOfWork
// ============================================

// Scope returns the default non-transactional scope.
func (s *Store) Scope() ports.Scope {
	return &scope{store: s}
}

// Execute runs fn on a snapshot and swaps it in on success.
// After-commit hooks run once the transaction lock is released.
func (s *Store) Execute(ctx context.Context, fn func(ctx context.Context, scope ports.Scope) error) error {
	tx, err := s.run(ctx, fn)
	if err != nil {
		return err
	}
	tx.hooks.Run(ctx, s.logger)
	return nil
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context, scope ports.Scope) error) (*scope, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	tx := &scope{store: s, tx: snapshot}
	defer func() { tx.closed = true }()

	defer func() {
		if r := recover(); r != nil {
			tx.hooks.Discard()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.hooks.Discard()
		return nil, persistence.Classify("execute", err)
	}

	if err := s.checkFault("", OpCommit); err != nil {
		tx.hooks.Discard()
		return nil, domainerrors.NewInfrastructure("commit", err)
	}

	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
	return tx, nil
}

// Factory returns a RepositoryFactory for kind.
func (s *Store) Factory(kind entities.Kind) ports.RepositoryFactory {
	return func(sc ports.Scope) (ports.Repository, error) {
		ms, ok := sc.(*scope)
		if !ok || ms.store != s {
			return nil, domainerrors.NewInvalidArgument("memory.Factory",
				fmt.Sprintf("scope %T does not belong to this store", sc))
		}
		if ms.closed {
			return nil, domainerrors.NewInvalidArgument("memory.Factory", "transaction already finished")
		}
		return &repository{kind: kind, scope: ms}, nil
	}
}

// ============================================
// Scope
// ============================================

type scope struct {
	store  *Store
	tx     *state // nil for the default scope
	hooks  persistence.Hooks
	closed bool
}

func (sc *scope) Transactional() bool { return sc.tx != nil }

func (sc *scope) AfterCommit(fn func(ctx context.Context)) {
	if sc.tx == nil {
		persistence.ImmediateScope{Logger: sc.store.logger}.AfterCommit(fn)
		return
	}
	sc.hooks.Add(fn)
}

// with runs fn against the scope's data under the data lock when needed.
func (sc *scope) with(fn func(st *state) error) error {
	if sc.tx != nil {
		// Snapshot принадлежит одной транзакции; txMu уже держится.
		return fn(sc.tx)
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return fn(sc.store.data)
}
