// Package resilience runs units of work under a per-attempt deadline on a bounded
// worker pool, retries them with a fixed delay and turns exhausted sequences into
// fatal errors.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultWorkers is the pool size used when NewRunner is given a non-positive size.
const DefaultWorkers = 64

// Task is a unit of work. The context is cancelled when the attempt deadline passes;
// tasks should observe it so abandoned work stops instead of running unobserved.
type Task[T any] func(ctx context.Context) (T, error)

// Runner owns the worker pool that executes tasks. When every slot is busy, callers
// wait for a slot until their attempt deadline; a wait that reaches the deadline is
// reported as ErrTimeout.
type Runner struct {
	slots    *semaphore.Weighted
	size     int64
	inFlight atomic.Int64
	hooks    *Hooks

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewRunner creates a runner with at most workers concurrent tasks.
func NewRunner(workers int, hooks *Hooks) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{
		slots: semaphore.NewWeighted(int64(workers)),
		size:  int64(workers),
		hooks: hooks,
	}
}

// Size returns the pool capacity.
func (r *Runner) Size() int { return int(r.size) }

// InFlight returns the number of tasks currently holding a worker slot.
func (r *Runner) InFlight() int64 { return r.inFlight.Load() }

// Run executes task on the pool and blocks until it finishes or timeout elapses.
// A task error is returned unchanged and a task panic is returned as an error
// wrapping ErrTaskPanic. On timeout the task's context is cancelled,
// its eventual result is discarded and ErrTimeout is returned.
func Run[T any](ctx context.Context, r *Runner, timeout time.Duration, task Task[T]) (T, error) {
	var zero T

	if ctx.Err() != nil {
		return zero, ctx.Err()
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	release, err := r.acquire(attemptCtx)
	if err != nil {
		return zero, r.deadlineErr(ctx, err)
	}

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)

	go func() {
		defer release()
		defer func() {
			if rec := recover(); rec != nil {
				ch <- result{err: fmt.Errorf("%w: %v", ErrTaskPanic, rec)}
			}
		}()
		v, err := task(attemptCtx)
		ch <- result{val: v, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			// The task gave up on the attempt deadline itself.
			return zero, ErrTimeout
		}
		return res.val, res.err
	case <-attemptCtx.Done():
		return zero, r.deadlineErr(ctx, attemptCtx.Err())
	}
}

// deadlineErr maps a failed wait to ErrTimeout unless the parent context or the
// pool itself is the cause.
func (r *Runner) deadlineErr(parent context.Context, err error) error {
	if errors.Is(err, ErrPoolClosed) {
		return err
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	return ErrTimeout
}

func (r *Runner) acquire(ctx context.Context) (func(), error) {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	r.wg.Add(1)
	r.mu.RUnlock()

	if err := r.slots.Acquire(ctx, 1); err != nil {
		r.wg.Done()
		return nil, err
	}
	r.hooks.emitPoolBusy(r.inFlight.Add(1))

	return func() {
		r.hooks.emitPoolBusy(r.inFlight.Add(-1))
		r.slots.Release(1)
		r.wg.Done()
	}, nil
}

// Shutdown stops accepting work and waits for in-flight tasks, including abandoned
// ones, to return. It gives up when ctx is done.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
