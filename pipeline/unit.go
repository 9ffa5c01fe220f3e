// Package pipeline provides the execution backbone of the engine: units of
// work, the ordered pipeline that collects them, and the scheduler that runs
// a pipeline's units strictly in insertion order while chaining their
// futures.
package pipeline

import (
	"context"
	"sync"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/event"
	"github.com/MaxiDonkey/synkflow/future"
)

// Unit is one executable reasoning step: its configuration, its hook pair
// and the output captured after execution. The configuration is mutated by
// the chain processor before scheduling; the captured output is written by
// the execution delegate exactly once per run.
type Unit struct {
	Config synkflow.Config

	mu     sync.Mutex
	output string
}

// NewUnit creates a unit of work from a configuration.
func NewUnit(cfg synkflow.Config) *Unit {
	return &Unit{Config: cfg}
}

// Output returns the output captured by the last execution, or the empty
// string before the unit has run.
func (u *Unit) Output() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.output
}

func (u *Unit) setOutput(s string) {
	u.mu.Lock()
	u.output = s
	u.mu.Unlock()
}

// Run produces the unit's execution future: the before hook computes the
// effective input, the executor runs it (as a single prompt, or as a
// concurrent batch for fan-out modes), and the after hook post-processes and
// captures the output.
func (u *Unit) Run(ctx context.Context) *future.Future[string] {
	cfg := u.Config.Clone()
	if cfg.Before != nil {
		cfg.Input = cfg.Before()
	}
	if cfg.Executor == nil {
		return future.Rejected[string](&synkflow.ConfigError{Msg: "unit has no executor"})
	}

	event.Emit(cfg.Events, event.Event{Type: event.UnitStart, Ordinal: cfg.Ordinal})

	var f *future.Future[string]
	if cfg.Mode.Batch() {
		f = cfg.Executor.ExecuteBatch(ctx, cfg, cfg.Prompts())
	} else {
		f = cfg.Executor.Execute(ctx, cfg)
	}

	return future.Map(f, func(out string) (string, error) {
		if cfg.After != nil {
			out = cfg.After(out)
		}
		u.setOutput(out)
		event.Emit(cfg.Events, event.Event{Type: event.UnitEnd, Ordinal: cfg.Ordinal, Output: out})
		return out, nil
	})
}
