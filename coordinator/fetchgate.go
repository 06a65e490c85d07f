package coordinator

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// FetchGate guarantees at most one in-flight producer per key. Concurrent
// callers for the same key await and share the first call's result, value or
// error, instead of issuing duplicate fetches. The in-flight marker is
// cleared when the producer returns, so a failed fetch never blocks its key.
//
// The zero value is ready to use.
type FetchGate struct {
	group singleflight.Group
}

// Do runs producer under the key's gate. The context of the caller that
// actually executes the producer is used; waiters joining an in-flight call
// share its outcome regardless of their own context.
func (g *FetchGate) Do(ctx context.Context, key string, producer func(ctx context.Context) (any, error)) (any, error) {
	result, err, _ := g.group.Do(key, func() (any, error) {
		return producer(ctx)
	})
	return result, err
}

// RunGated is the type-safe wrapper around FetchGate.Do.
func RunGated[T any](ctx context.Context, gate *FetchGate, key string, producer func(ctx context.Context) (T, error)) (T, error) {
	result, err := gate.Do(ctx, key, func(ctx context.Context) (any, error) {
		return producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
