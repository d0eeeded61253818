// Package fanout provides a bounded-concurrency fan-out helper used by the
// mediator's Publish path to run notification subscribers independently.
// It manages goroutines, bounded concurrency via a semaphore channel, and
// context cancellation, and preserves input order in the returned errors so
// callers can attribute a failure to the subscriber that produced it.
package fanout

import (
	"context"
	"sync"
)

// Run executes fn for each item using at most maxWorkers concurrent
// goroutines and returns one error slot per item, in input order. A nil
// slot means that item succeeded; failures are isolated per item and never
// stop the others.
//
// If ctx is canceled while a goroutine is waiting for a semaphore slot,
// that goroutine records ctx.Err() without calling fn. Goroutines that have
// already acquired a slot run to completion; fn is responsible for checking
// ctx internally if it supports cancellation.
//
// Run blocks until all goroutines complete. maxWorkers must be >= 1.
func Run[T any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) error) []error {
	if len(items) == 0 {
		return []error{}
	}

	errs := make([]error, len(items))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it T) {
			defer wg.Done()

			// Context-aware semaphore acquisition.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}

			errs[idx] = fn(ctx, it)
		}(i, item)
	}

	wg.Wait()
	return errs
}
