// Package workpool runs a bounded set of independent tasks concurrently and
// collects their results, generalizing the semaphore-plus-WaitGroup-plus
// buffered-channel fan-out in storage/s3aws.go's HetznerUploadToRemote into a
// reusable, fail-fast, cancellable primitive (spec §4.4, §4.5, §5, §9) built
// on golang.org/x/sync's errgroup and weighted semaphore.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Task is one unit of fan-out work. It must return promptly after ctx is
// cancelled.
type Task[T any] func(ctx context.Context) (T, error)

// Result pairs a task's index (its position in the slice passed to Run) with
// its outcome, so callers can report errors against "extractor 3" or
// "transformer for sourceType X" without re-deriving identity from T.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Run executes tasks with at most maxConcurrency running at once, waits for
// all of them, and returns one Result per task in task order (not completion
// order — completion order ambiguity is resolved by the caller's merge step,
// which per spec §5 must not rely on it anyway).
//
// Run does not itself cancel on first error: callers that need fail-fast
// semantics (Extract, Transform) use RunFailFast below. Run is for callers
// that want every result regardless of individual failures, tolerating
// per-task failures while still reporting all of them.
func Run[T any](ctx context.Context, maxConcurrency int, tasks []Task[T]) []Result[T] {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	sem := semaphore.NewWeighted(int64(maxConcurrency))
	var grp errgroup.Group

	results := make([]Result[T], len(tasks))

	for i, task := range tasks {
		i, task := i, task
		grp.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = Result[T]{Index: i, Err: err}
				return nil
			}
			defer sem.Release(1)

			value, err := task(ctx)
			results[i] = Result[T]{Index: i, Value: value, Err: err}
			return nil
		})
	}

	grp.Wait()
	return results
}

// RunFailFast executes tasks with at most maxConcurrency running at once. On
// the first task error, it cancels the derived context so in-flight and
// not-yet-started tasks can stop promptly, then waits for every goroutine to
// return before giving back the first error encountered (spec §5: "pending
// tasks receive a cancellation signal and must terminate promptly").
//
// The returned slice always has one Result per task; tasks that never got to
// run because the pool was already cancelled return the cancellation error
// as their Err.
func RunFailFast[T any](ctx context.Context, maxConcurrency int, tasks []Task[T]) ([]Result[T], error) {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	grp, runCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(maxConcurrency))

	results := make([]Result[T], len(tasks))

	for i, task := range tasks {
		i, task := i, task
		grp.Go(func() error {
			if err := sem.Acquire(runCtx, 1); err != nil {
				results[i] = Result[T]{Index: i, Err: err}
				return err
			}
			defer sem.Release(1)

			value, err := task(runCtx)
			results[i] = Result[T]{Index: i, Value: value, Err: err}
			return err
		})
	}

	err := grp.Wait()
	return results, err
}

// Bound returns min(n, cap), the pool-sizing rule used throughout §4.4/§4.5
// (e.g. Extract's min(N, runtime.NumCPU()*2)).
func Bound(n, cap int) int {
	if n < cap {
		return n
	}
	return cap
}
