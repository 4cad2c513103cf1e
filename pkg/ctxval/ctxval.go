// Package ctxval stores mutable values on a context. A context wrapped once
// at the edge of a request can be written to by handlers further down the
// chain and read back by middleware that only holds the outer context.
package ctxval

import (
	"context"
	"sync"
)

type ctxKey struct{}

var defKey = ctxKey{}

type store struct {
	parent context.Context

	mu     sync.RWMutex
	values map[any]any
}

// Wrap attaches a value store to ctx. Wrapping an already wrapped context is a no-op.
func Wrap(ctx context.Context) context.Context {
	if _, ok := getStore(ctx); ok {
		return ctx
	}
	s := &store{
		parent: ctx,
		values: make(map[any]any),
	}
	return context.WithValue(ctx, defKey, s)
}

// Set stores v under k. It does nothing when ctx was not wrapped.
func Set[K comparable, V any](ctx context.Context, k K, v V) {
	s, ok := getStore(ctx)
	if !ok {
		return
	}
	s.mu.Lock()
	s.values[k] = v
	s.mu.Unlock()
}

// Get returns the value stored under k, falling back to regular context values.
func Get[K comparable, V any](ctx context.Context, k K) (V, bool) {
	s, ok := getStore(ctx)
	if !ok {
		return *new(V), false
	}
	v, ok := s.get(k).(V)
	return v, ok
}

// Update replaces the value under k with fn(current) while holding the lock.
func Update[K comparable, V any](ctx context.Context, k K, fn func(V) V) {
	s, ok := getStore(ctx)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := s.values[k].(V)
	s.values[k] = fn(cur)
}

func (s *store) get(k any) any {
	s.mu.RLock()
	v, ok := s.values[k]
	s.mu.RUnlock()
	if ok {
		return v
	}
	return s.parent.Value(k)
}

func getStore(ctx context.Context) (*store, bool) {
	s, ok := ctx.Value(defKey).(*store)
	return s, ok
}
