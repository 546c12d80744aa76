package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCommands - in-memory mock для Redis команд.
type MockCommands struct {
	data    map[string]string
	ttl     map[string]time.Duration
	FailErr error
}

func newMock() *MockCommands {
	return &MockCommands{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *MockCommands) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.FailErr != nil {
		return redis.NewStringResult("", m.FailErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockCommands) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.FailErr != nil {
		return redis.NewStatusResult("", m.FailErr)
	}
	m.data[key] = string(value.([]byte))
	m.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockCommands) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if m.FailErr != nil {
		return redis.NewIntResult(0, m.FailErr)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestProductCache_RoundTrip(t *testing.T) {
	mock := newMock()
	cache := NewProductCache(mock, nil)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, 1, []byte(`{"id":1}`), time.Minute))
	assert.Equal(t, time.Minute, mock.ttl["storehub:product:1"])

	data, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":1}`, string(data))

	require.NoError(t, cache.Invalidate(ctx, 1))
	_, ok, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// Invalidate отсутствующего ключа не ошибка
	assert.NoError(t, cache.Invalidate(ctx, 2))
}

func TestProductCache_Errors(t *testing.T) {
	mock := newMock()
	mock.FailErr = errors.New("connection refused")
	cache := NewProductCache(mock, nil)
	ctx := context.Background()

	_, _, err := cache.Get(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, cache.Set(ctx, 1, []byte("x"), time.Second))
	assert.Error(t, cache.Invalidate(ctx, 1))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "storehub:product:42", Key(42))
}
