package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetcher produces one source's value for an aggregation pass.
type Fetcher func(ctx context.Context) (any, error)

// Collect runs every fetcher concurrently and returns the values of the ones
// that succeeded. A failing or timed-out fetcher marks its source unavailable
// and is recorded in the returned Errors; it never aborts the pass. A
// non-positive timeout applies no per-source deadline beyond ctx's own.
func Collect(ctx context.Context, fetchers map[SourceID]Fetcher, timeout time.Duration) (Values, Errors) {
	vals := make(Values, len(fetchers))
	errs := make(Errors)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for id, fetch := range fetchers {
		id, fetch := id, fetch
		g.Go(func() error {
			fetchCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			val, err := runFetcher(fetchCtx, fetch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[id] = err
				return nil
			}
			vals[id] = val
			return nil
		})
	}

	g.Wait()
	return vals, errs
}

// runFetcher converts a panicking fetcher into an unavailable source instead
// of taking down the whole pass.
func runFetcher(ctx context.Context, fetch Fetcher) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return fetch(ctx)
}
