// Package future implements a single-value asynchronous result container
// with chainable continuations.
//
// A Future starts pending and settles exactly once, either fulfilled with a
// value or rejected with an error. Settlement is one-way: the first resolve
// or reject wins and every later call is a no-op. Continuations registered
// while the future is pending are stored and fired in registration order when
// it settles; continuations registered after settlement fire asynchronously
// with the already-known outcome. Callbacks are never invoked inline on the
// stack of the resolve or reject caller.
//
// Because Go methods cannot introduce type parameters, the transforming
// combinators live as package functions: [Map] for value transformation,
// [Compose] for chaining to another asynchronous operation, and [All] for
// fan-out joins. Side-effecting observation stays on the type as
// [Future.Then] and [Future.Catch].
//
// Basic usage:
//
//	f := future.Go(func() (string, error) {
//	    return fetchSomething(ctx)
//	})
//	upper := future.Map(f, func(s string) (string, error) {
//	    return strings.ToUpper(s), nil
//	})
//	result, err := upper.Await(ctx)
package future

import (
	"context"
	"fmt"
	"sync"
)

type state uint8

const (
	pending state = iota
	fulfilled
	rejected
)

// Future is a single-value asynchronous result container.
// The zero value is not usable; create futures with [New], [Go],
// [Resolved] or [Rejected].
type Future[T any] struct {
	mu          sync.Mutex
	state       state
	value       T
	err         error
	onFulfilled []func(T)
	onRejected  []func(error)
	done        chan struct{}
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// New creates a future and invokes executor synchronously. The executor is
// expected to eventually call resolve or reject exactly once; calls after the
// first are no-ops. A panic raised inside the executor rejects the future.
func New[T any](executor func(resolve func(T), reject func(error))) *Future[T] {
	f := newFuture[T]()
	func() {
		defer func() {
			if r := recover(); r != nil {
				f.reject(recovered(r))
			}
		}()
		executor(f.resolve, f.reject)
	}()
	return f
}

// Go runs fn on a new goroutine and settles the returned future with its
// result. A panic inside fn rejects the future.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.reject(recovered(r))
			}
		}()
		v, err := fn()
		if err != nil {
			f.reject(err)
			return
		}
		f.resolve(v)
	}()
	return f
}

// Resolved returns a future already fulfilled with v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.resolve(v)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.reject(err)
	return f
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

func (f *Future[T]) resolve(v T) {
	f.mu.Lock()
	if f.state != pending {
		f.mu.Unlock()
		return
	}
	f.state = fulfilled
	f.value = v
	cbs := f.onFulfilled
	f.onFulfilled, f.onRejected = nil, nil
	close(f.done)
	f.mu.Unlock()

	if len(cbs) > 0 {
		// Dispatch on a fresh goroutine so settlement never re-enters
		// caller code inline. Registration order is preserved.
		go func() {
			for _, cb := range cbs {
				cb(v)
			}
		}()
	}
}

func (f *Future[T]) reject(err error) {
	f.mu.Lock()
	if f.state != pending {
		f.mu.Unlock()
		return
	}
	f.state = rejected
	f.err = err
	cbs := f.onRejected
	f.onFulfilled, f.onRejected = nil, nil
	close(f.done)
	f.mu.Unlock()

	if len(cbs) > 0 {
		go func() {
			for _, cb := range cbs {
				cb(err)
			}
		}()
	}
}

// subscribe registers a continuation pair. While pending both are stored;
// after settlement the matching one fires asynchronously.
func (f *Future[T]) subscribe(onFulfilled func(T), onRejected func(error)) {
	f.mu.Lock()
	switch f.state {
	case pending:
		if onFulfilled != nil {
			f.onFulfilled = append(f.onFulfilled, onFulfilled)
		}
		if onRejected != nil {
			f.onRejected = append(f.onRejected, onRejected)
		}
		f.mu.Unlock()
	case fulfilled:
		v := f.value
		f.mu.Unlock()
		if onFulfilled != nil {
			go onFulfilled(v)
		}
	case rejected:
		err := f.err
		f.mu.Unlock()
		if onRejected != nil {
			go onRejected(err)
		}
	}
}

// Then registers a side-effecting fulfillment callback and passes the value
// through unchanged to the returned future. A rejection bypasses the callback
// and propagates. A panic inside the callback rejects the returned future.
func (f *Future[T]) Then(fn func(T)) *Future[T] {
	out := newFuture[T]()
	f.subscribe(func(v T) {
		if err := guard(func() { fn(v) }); err != nil {
			out.reject(err)
			return
		}
		out.resolve(v)
	}, out.reject)
	return out
}

// Catch registers a rejection observer. The observer does not suppress
// propagation: the returned future is still rejected with the same error
// after the observer runs, so an unhandled rejection stays visible further
// down the chain. Fulfillment passes through untouched.
func (f *Future[T]) Catch(fn func(error)) *Future[T] {
	out := newFuture[T]()
	f.subscribe(out.resolve, func(err error) {
		guard(func() { fn(err) })
		out.reject(err)
	})
	return out
}

// Await blocks until the future settles or ctx is done, whichever comes
// first. On settlement it returns the value or the rejection error; on
// context expiry it returns ctx.Err() while the future stays pending.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.state == rejected {
			var zero T
			return zero, f.err
		}
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Settled reports whether the future has left the pending state.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state != pending
}

func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	fn()
	return nil
}
