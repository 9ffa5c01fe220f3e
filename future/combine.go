package future

import (
	"errors"
	"sync"
)

// ErrNilFuture is returned when a composition callback produces a nil future.
var ErrNilFuture = errors.New("future: compose callback returned nil")

// Map returns a future fulfilled with fn applied to f's value. A rejection of
// f propagates unchanged; an error or panic from fn rejects the returned
// future.
func Map[T, R any](f *Future[T], fn func(T) (R, error)) *Future[R] {
	out := newFuture[R]()
	f.subscribe(func(v T) {
		defer func() {
			if r := recover(); r != nil {
				out.reject(recovered(r))
			}
		}()
		mapped, err := fn(v)
		if err != nil {
			out.reject(err)
			return
		}
		out.resolve(mapped)
	}, out.reject)
	return out
}

// Compose chains f into another asynchronous operation. The returned future
// settles when the inner future produced by fn settles. A rejection of f
// bypasses fn and propagates; a panic inside fn rejects the returned future.
func Compose[T, R any](f *Future[T], fn func(T) *Future[R]) *Future[R] {
	out := newFuture[R]()
	f.subscribe(func(v T) {
		defer func() {
			if r := recover(); r != nil {
				out.reject(recovered(r))
			}
		}()
		inner := fn(v)
		if inner == nil {
			out.reject(ErrNilFuture)
			return
		}
		inner.subscribe(out.resolve, out.reject)
	}, out.reject)
	return out
}

// All returns a future that fulfills with every input's value, in input
// order, once all inputs fulfill. It rejects with the first rejection among
// the inputs; remaining results are discarded. An empty input fulfills
// immediately with nil.
func All[T any](fs []*Future[T]) *Future[[]T] {
	out := newFuture[[]T]()
	if len(fs) == 0 {
		out.resolve(nil)
		return out
	}

	var mu sync.Mutex
	results := make([]T, len(fs))
	remaining := len(fs)

	for i, f := range fs {
		i := i
		f.subscribe(func(v T) {
			mu.Lock()
			results[i] = v
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				out.resolve(results)
			}
		}, out.reject)
	}
	return out
}
