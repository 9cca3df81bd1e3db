package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// BatchOptions bounds the remote calls issued by one pipeline stage
type BatchOptions struct {
	CallTimeout    time.Duration // per call, 0 = no deadline
	MaxConcurrency int           // in-flight calls per stage, 0 = unbounded
}

type settlement[R any] struct {
	value     R
	err       error
	attempted bool
}

// settle calls fn for every index i < n for which attempt(i) is true, all
// concurrently, and returns once every call has settled. Slot i of the
// result always belongs to index i; skipped slots have attempted == false.
func settle[R any](ctx context.Context, opts BatchOptions, n int, attempt func(i int) bool, fn func(ctx context.Context, i int) (R, error)) []settlement[R] {
	results := make([]settlement[R], n)

	var sem *semaphore.Weighted
	if opts.MaxConcurrency > 0 {
		sem = semaphore.NewWeighted(int64(opts.MaxConcurrency))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		if !attempt(i) {
			continue
		}
		results[i].attempted = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i].value, results[i].err = settleOne(ctx, opts, sem, func(ctx context.Context) (R, error) {
				return fn(ctx, i)
			})
		}()
	}
	wg.Wait()

	return results
}

func settleOne[R any](ctx context.Context, opts BatchOptions, sem *semaphore.Weighted, fn func(ctx context.Context) (R, error)) (value R, err error) {
	if sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return value, err
		}
		defer sem.Release(1)
	}

	if opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.CallTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in remote call: %v", r)
		}
	}()

	return fn(ctx)
}

func always(int) bool { return true }
