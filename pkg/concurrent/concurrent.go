package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies mapFn to every element in parallel, preserving order. At most
// workers calls run at once; workers < 1 means unbounded. It returns the first
// error encountered and cancels the context handed to the remaining calls.
func Map[T any, R any](ctx context.Context, in []T, workers int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	errGroup, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		errGroup.SetLimit(workers)
	}

	for idx, val := range in {
		errGroup.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := mapFn(gctx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Each runs action for every element with at most workers in flight and
// returns the first error.
func Each[T any](ctx context.Context, in []T, workers int, action func(context.Context, T) error) error {
	_, err := Map(ctx, in, workers, func(ctx context.Context, v T) (struct{}, error) {
		return struct{}{}, action(ctx, v)
	})
	return err
}
