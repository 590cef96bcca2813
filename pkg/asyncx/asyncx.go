// Package asyncx runs per-item work concurrently while keeping results in
// input order.
//
//	pages, err := asyncx.Pool(ctx, 4, images, func(ctx context.Context, img ocr.Image) (*ocr.Page, error) {
//		return recognizer.Recognize(ctx, img)
//	})
package asyncx

import (
	"context"
	"sync"
)

// Map applies fn to every item concurrently, one goroutine per item, and
// returns the results in input order. The first error cancels the context
// passed to the remaining calls and is returned.
func Map[T any, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	return Pool(ctx, len(items), items, fn)
}

// Pool is Map with at most workers goroutines. Items not yet started when
// an error occurs are skipped.
func Pool[T any, R any](
	ctx context.Context,
	workers int,
	items []T,
	fn func(context.Context, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return []R{}, ctx.Err()
	}
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, len(items))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan int, len(items))
	for i := range items {
		work <- i
	}
	close(work)

	results := make([]R, len(items))
	var (
		once     sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range work {
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				r, err := fn(ctx, items[i])
				if err != nil {
					fail(err)
					return
				}
				results[i] = r
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
