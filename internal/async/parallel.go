// Package async provides bounded-parallel fan-out helpers for
// document-processing pipelines: errgroup plus a semaphore channel,
// with results reassembled in submission order.
package async

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes work(i) for every i in [0, n) with at most parallelism
// goroutines in flight at once, collecting each result into index i of
// the returned slice. The first error cancels ctx for the remaining
// in-flight and not-yet-started work and is returned together with a
// nil slice; no partial results are returned.
//
// A parallelism of 0 or less is treated as 1 (no fan-out).
func Run[T any](ctx context.Context, n int, parallelism int, work func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, nil
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, parallelism)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			result, err := work(gctx, i)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
