package pipeline

import (
	"context"
	"sync"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/future"
)

// ErrorFunc receives the message text of the error that terminated a run.
type ErrorFunc func(msg string)

var (
	defaultMu      sync.Mutex
	defaultOnError ErrorFunc = func(string) {}
)

// SetDefaultErrorFunc installs the process-wide error delegate used by
// schedulers without a per-instance override. The last writer wins; a nil fn
// restores the no-op delegate.
func SetDefaultErrorFunc(fn ErrorFunc) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if fn == nil {
		fn = func(string) {}
	}
	defaultOnError = fn
}

func defaultErrorFunc() ErrorFunc {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultOnError
}

// Scheduler executes a pipeline's units strictly one at a time, in insertion
// order, chaining each unit's future into the next. Any rejection
// short-circuits the remaining units and is funneled to exactly one error
// delegate; the scheduler does not re-raise past the delegate, so a failing
// chain cannot take down its host.
//
// A scheduler borrows the pipeline for the duration of one run and does not
// retain it afterward.
type Scheduler struct {
	// OnError overrides the process-wide error delegate for runs started
	// by this scheduler. Nil falls back to the default.
	OnError ErrorFunc
}

// Run walks the pipeline from the first unit to the last and returns a
// future that fulfills with the final unit's captured output. An empty
// pipeline rejects immediately with a configuration error and executes
// nothing. The returned future remains observable after the delegate has
// been notified, so callers may still Await it.
func (s *Scheduler) Run(ctx context.Context, p *Pipeline) *future.Future[string] {
	onError := s.OnError
	if onError == nil {
		onError = defaultErrorFunc()
	}

	if p == nil || p.Len() == 0 {
		err := &synkflow.ConfigError{Msg: "no script defined"}
		return future.Rejected[string](err).Catch(func(err error) {
			onError(err.Error())
		})
	}

	return s.step(ctx, p, 0).Catch(func(err error) {
		onError(err.Error())
	})
}

// step executes the unit at index i and composes into i+1. Termination
// resolves with the last unit's already-captured output rather than a fresh
// computation.
func (s *Scheduler) step(ctx context.Context, p *Pipeline, i int) *future.Future[string] {
	return future.Compose(p.At(i).Run(ctx), func(string) *future.Future[string] {
		if i+1 >= p.Len() {
			return future.Resolved(p.LastOutput())
		}
		return s.step(ctx, p, i+1)
	})
}
