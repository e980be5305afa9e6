package portalbridge

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchCall is one independent call in a batch.
type BatchCall[T any] func(ctx context.Context) (T, error)

// Batch runs calls concurrently and waits for all of them. Results land at the
// index of their call; a failed call leaves the zero value. The returned error
// is the failure of the lowest-index failing call, after every call finished.
func Batch[T any](ctx context.Context, calls ...BatchCall[T]) ([]T, error) {
	return BatchLimit(ctx, 0, calls...)
}

// BatchLimit is Batch with at most limit calls in flight (limit <= 0: no bound).
func BatchLimit[T any](ctx context.Context, limit int, calls ...BatchCall[T]) ([]T, error) {
	results := make([]T, len(calls))
	errs := make([]error, len(calls))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, c := range calls {
		g.Go(func() error {
			v, err := c(ctx)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = v
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
