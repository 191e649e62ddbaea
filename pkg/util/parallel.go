package util

import (
	"context"
	"sync"
)

// ForEach runs fn over inputs with at most workers goroutines and waits for
// all of them. A failure does not stop the others; errs[i] is fn's result for
// inputs[i]. Items not started before ctx is done get ctx.Err().
func ForEach[T any](ctx context.Context, inputs []T, workers int, fn func(context.Context, T) error) []error {
	errs := make([]error, len(inputs))
	if len(inputs) == 0 {
		return errs
	}
	workers = max(1, min(workers, len(inputs)))

	type job struct {
		i    int
		item T
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				errs[j.i] = fn(ctx, j.item)
			}
		}()
	}

	for i, item := range inputs {
		if err := ctx.Err(); err != nil {
			for k := i; k < len(inputs); k++ {
				errs[k] = err
			}
			break
		}
		jobs <- job{i: i, item: item}
	}
	close(jobs)
	wg.Wait()
	return errs
}
