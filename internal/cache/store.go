package cache

import (
	"context"
	"time"
)

// Store caches values that may be shared across processes. A miss is
// (nil, false, nil); err is reserved for backend failures.
type Store[V any] interface {
	Get(ctx context.Context, key string) (*V, bool, error)
	Set(ctx context.Context, key string, value *V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type NoopStore[V any] struct{}

func (NoopStore[V]) Get(_ context.Context, _ string) (*V, bool, error) {
	return nil, false, nil
}

func (NoopStore[V]) Set(_ context.Context, _ string, _ *V, _ time.Duration) error {
	return nil
}

func (NoopStore[V]) Delete(_ context.Context, _ string) error {
	return nil
}

// MemoryStore keeps values in process.
type MemoryStore[V any] struct {
	items Cache[string, *V]
}

func NewMemoryStore[V any](opts ...Option) *MemoryStore[V] {
	return &MemoryStore[V]{items: NewTTLCache[string, *V](opts...)}
}

func (s *MemoryStore[V]) Get(_ context.Context, key string) (*V, bool, error) {
	value, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *MemoryStore[V]) Set(_ context.Context, key string, value *V, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	s.items.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore[V]) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}
