// Package parallel provides the worker pool used for column-wise reductions.
//
// Every reduction reads only its own column, so a table's columns can be
// reduced independently. Map fans the tasks out to a fixed number of
// goroutines and fans the results back in by index, so output order never
// depends on scheduling. Errors are not short-circuited: every task runs and
// all failures are returned together, joined in task order.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// WorkerPool bounds the number of goroutines used by Map
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a new worker pool. numWorkers <= 0 selects runtime.NumCPU().
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// Size returns the number of workers
func (wp *WorkerPool) Size() int {
	return wp.numWorkers
}

// Map applies worker to every item on the pool and returns results in item
// order. Tasks that fail leave the zero R in their slot; the returned error
// joins every task error in item order. If ctx is cancelled, undispatched
// items are skipped and ctx.Err() is appended to the joined error.
func Map[T, R any](
	ctx context.Context,
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))

	workers := wp.numWorkers
	if workers > len(items) {
		workers = len(items)
	}

	// Channel for input items with index
	itemCh := make(chan indexedItem[T])

	// Each worker writes only to its own indices, so no lock is needed.
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				results[item.index], errs[item.index] = worker(item.index, item.value)
			}
		}()
	}

	var cancelled error
dispatch:
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case itemCh <- indexedItem[T]{index: i, value: item}:
		}
	}
	close(itemCh)
	wg.Wait()

	if cancelled != nil {
		errs = append(errs, cancelled)
	}
	return results, errors.Join(errs...)
}

// indexedItem holds an item with its index
type indexedItem[T any] struct {
	index int
	value T
}
