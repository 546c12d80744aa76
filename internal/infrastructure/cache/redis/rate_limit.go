package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const limitPrefix = "storehub:ratelimit:"

// CounterCommands - команды, нужные счётчику окна.
type CounterCommands interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// WindowCounter - fixed window счётчик запросов, общий для всех реплик API.
type WindowCounter struct {
	cmd CounterCommands
}

// NewWindowCounter creates the counter.
func NewWindowCounter(cmd CounterCommands) *WindowCounter {
	return &WindowCounter{cmd: cmd}
}

// Take расходует один запрос из окна key.
// Первый INCR в окне ставит TTL; ключ без TTL (сбой между командами) получает его повторно.
func (w *WindowCounter) Take(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Duration, error) {
	full := limitPrefix + key

	n, err := w.cmd.Incr(ctx, full).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := w.cmd.PExpire(ctx, full, window).Err(); err != nil {
			return false, 0, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	ttl, err := w.cmd.PTTL(ctx, full).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		if err := w.cmd.PExpire(ctx, full, window).Err(); err != nil {
			return false, 0, 0, fmt.Errorf("rate limit expire: %w", err)
		}
		ttl = window
	}

	remaining := limit - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return int(n) <= limit, remaining, ttl, nil
}
