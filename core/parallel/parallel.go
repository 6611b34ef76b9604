// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// chunks divides [0, items) into at most workers contiguous ranges.
func chunks(items, workers int) [][2]int {
	if items <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// ceiling division
	size := (items + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for start := 0; start < items; start += size {
		end := start + size
		if end > items {
			end = items
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// Parallelize divides items according to the number of CPU cores and calls fn
// concurrently for each range [start, end).
func Parallelize(items int, fn func(start, end int)) {
	var wg sync.WaitGroup
	for _, c := range chunks(items, runtime.NumCPU()) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items does not exceed threshold, and like Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ForEach calls fn for every index in [0, items) using at most workers
// goroutines. The first error cancels ctx for the remaining calls and is
// returned.
func ForEach(ctx context.Context, items, workers int, fn func(ctx context.Context, i int) error) error {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < items; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
