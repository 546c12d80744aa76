package ports

import (
	"context"
	"time"
)

// ProductCache - кэш полного представления товара (read path).
// Инвалидируется после commit любой операции, меняющей товар.
type ProductCache interface {
	// Get returns the cached payload and whether it was found.
	Get(ctx context.Context, productID int64) ([]byte, bool, error)
	Set(ctx context.Context, productID int64, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, productID int64) error
}

// NopProductCache never caches.
type NopProductCache struct{}

func (NopProductCache) Get(context.Context, int64) ([]byte, bool, error) { return nil, false, nil }

func (NopProductCache) Set(context.Context, int64, []byte, time.Duration) error { return nil }

func (NopProductCache) Invalidate(context.Context, int64) error { return nil }
