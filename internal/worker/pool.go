// Package worker runs terrain generation jobs off the driving tick and hands
// back futures the owner polls.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/alitto/pond/v2"
)

// ErrPoolStopped is reported by futures submitted after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// Pool is a bounded set of background workers.
type Pool struct {
	pool    pond.Pool
	inline  bool
	pending atomic.Int64
	stopped atomic.Bool
}

// New creates a pool running at most workers jobs at once.
// workers <= 0 uses one worker per CPU.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{pool: pond.NewPool(workers)}
}

// NewInline creates a pool that runs every job synchronously inside Submit.
// Futures from it are complete before Submit returns.
func NewInline() *Pool {
	return &Pool{inline: true}
}

// Pending returns the number of submitted jobs that have not finished.
func (p *Pool) Pending() int {
	return int(p.pending.Load())
}

// Stop waits for running jobs and refuses new ones.
func (p *Pool) Stop() {
	if p.stopped.Swap(true) {
		return
	}
	if p.pool != nil {
		p.pool.StopAndWait()
	}
}

// Future is the handle to one background job's result.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit schedules fn on the pool and returns its future.
func Submit[T any](p *Pool, fn func() T) *Future[T] {
	return SubmitErr(p, func() (T, error) { return fn(), nil })
}

// SubmitErr is Submit for jobs that can fail.
func SubmitErr[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	if p.stopped.Load() {
		f.err = ErrPoolStopped
		close(f.done)
		return f
	}

	p.pending.Add(1)
	run := func() {
		defer p.pending.Add(-1)
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("worker job panicked: %v", r)
			}
		}()
		f.value, f.err = fn()
	}

	if p.inline {
		run()
		return f
	}
	p.pool.Submit(run)
	return f
}

// Ready reports whether the job has finished, without blocking.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the job's value. It must only be called once Ready is true.
func (f *Future[T]) Result() (T, error) {
	return f.value, f.err
}

// Wait blocks until the job finishes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done exposes the completion channel for select loops.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
