// Package persistence содержит общие для backend'ов части Unit of Work.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Hooks - очередь after-commit callbacks одного Unit of Work.
type Hooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

// Add queues fn.
func (h *Hooks) Add(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Len returns the number of queued hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fns)
}

// Run executes queued hooks in order. A panicking hook is logged and
// does not stop the remaining ones. Returns the number of failed hooks.
func (h *Hooks) Run(ctx context.Context, logger *slog.Logger) int {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	failed := 0
	for i, fn := range fns {
		if err := safeCall(ctx, fn); err != nil {
			failed++
			logger.ErrorContext(ctx, "after-commit hook failed",
				slog.Int("hook", i),
				slog.String("error", err.Error()),
			)
		}
	}
	return failed
}

// Discard drops queued hooks (rollback path).
func (h *Hooks) Discard() {
	h.mu.Lock()
	h.fns = nil
	h.mu.Unlock()
}

func safeCall(ctx context.Context, fn func(ctx context.Context)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn(ctx)
	return nil
}

// ImmediateScope - нетранзакционный scope: hooks выполняются сразу.
type ImmediateScope struct {
	Logger *slog.Logger
}

// Transactional always returns false.
func (s ImmediateScope) Transactional() bool { return false }

// AfterCommit runs fn right away; there is nothing to wait for.
func (s ImmediateScope) AfterCommit(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := safeCall(context.Background(), fn); err != nil {
		logger.Error("after-commit hook failed", slog.String("error", err.Error()))
	}
}
