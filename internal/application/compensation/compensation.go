// Package compensation - явный список компенсирующих действий (saga).
//
// Побочные эффекты вне БД (запись файла) не откатываются вместе с
// транзакцией. Шаг workflow, создавший такой эффект, добавляет в List
// действие отмены; при любом abort список выполняется целиком.
// Ошибки компенсаций логируются и никогда не возвращаются:
// исходная ошибка всегда важнее.
package compensation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storehub",
			Name:      "compensations_total",
			Help:      "Total number of compensating actions executed",
		},
		[]string{"status"},
	)
)

// Func undoes one external side effect.
type Func func(ctx context.Context) error

type action struct {
	name string
	fn   Func
}

// List - накопленные компенсации одного запроса.
// The zero value is ready to use.
type List struct {
	mu      sync.Mutex
	actions []action
}

// Add appends a named compensation.
func (l *List) Add(name string, fn Func) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.actions = append(l.actions, action{name: name, fn: fn})
	l.mu.Unlock()
}

// Len returns the number of pending compensations.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.actions)
}

// Names returns pending compensation names in registration order.
func (l *List) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.actions))
	for i, a := range l.actions {
		out[i] = a.name
	}
	return out
}

// Run executes every pending compensation, newest first, and empties the list.
// Failures and panics are logged; Run returns how many failed.
func (l *List) Run(ctx context.Context, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	l.mu.Lock()
	actions := l.actions
	l.actions = nil
	l.mu.Unlock()

	// Отменённый контекст запроса не должен мешать уборке.
	ctx = context.WithoutCancel(ctx)

	failed := 0
	for i := len(actions) - 1; i >= 0; i-- {
		a := actions[i]
		if err := call(ctx, a.fn); err != nil {
			failed++
			runs.WithLabelValues("failed").Inc()
			logger.ErrorContext(ctx, "compensation failed",
				slog.String("compensation", a.name),
				slog.String("error", err.Error()),
			)
			continue
		}
		runs.WithLabelValues("ok").Inc()
		logger.InfoContext(ctx, "compensation executed", slog.String("compensation", a.name))
	}
	return failed
}

// Clear drops pending compensations (success path).
func (l *List) Clear() {
	l.mu.Lock()
	l.actions = nil
	l.mu.Unlock()
}

func call(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Guard runs body and, if it fails, runs the compensations before
// returning body's error unchanged. A panic in body also runs them and
// is re-raised.
func Guard(ctx context.Context, l *List, logger *slog.Logger, body func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.Run(ctx, logger)
			panic(r)
		}
	}()

	if err = body(); err != nil {
		l.Run(ctx, logger)
		return err
	}
	l.Clear()
	return nil
}
