package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation with explicit
// resolve/reject semantics: Await returns either the resolved value or the
// rejection error, exactly once settled.
type Future[U any] struct {
	result U
	err    error
	once   sync.Once
	done   chan struct{}
}

// Await blocks until the future settles and returns its value and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for the future to settle, giving up after timeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// IsSettled reports whether the future has settled, without blocking.
func (f *Future[U]) IsSettled() bool {
	select {
	case <-f.done:
		return true
	default:
	}
	return false
}

// Go starts fn on its own goroutine and returns a Future that settles with
// fn's result. A pre-canceled context settles the future immediately with the
// context error so callers never leak a goroutine waiting on dead work.
func Go[U any](ctx context.Context, fn func(context.Context) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		res, err := fn(ctx)

		f.once.Do(func() {
			f.result = res
			f.err = err
		})
	}()

	return f
}

// SettleAll waits for every future to settle regardless of outcome and
// returns all results alongside a parallel slice of per-future errors.
// The error slice is nil when every future resolved.
func SettleAll[U any](futures ...*Future[U]) ([]U, []error) {
	results := make([]U, len(futures))

	var errs []error
	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil {
			if errs == nil {
				errs = make([]error, len(futures))
			}
			errs[i] = err
		}
	}

	return results, errs
}
