package synkflow

import (
	"context"

	"github.com/MaxiDonkey/synkflow/future"
)

// Executor is the prompt execution capability supplied by the host. The
// engine never performs network I/O itself; it hands a configured unit to an
// Executor and reacts to the settlement of the returned future.
//
// Implementations may stream partial output through cfg.Events; the engine
// does not interpret that side channel. Retry and timeout policy belong to
// the implementation, not to the engine.
type Executor interface {
	// Execute runs a single prompt and settles with its complete output.
	Execute(ctx context.Context, cfg Config) *future.Future[string]

	// ExecuteBatch runs every prompt concurrently and settles once the
	// whole batch completes, or rejects on the first failure. Partial
	// completion is not observable.
	ExecuteBatch(ctx context.Context, cfg Config, prompts []string) *future.Future[string]
}

// Saver is the persistence capability invoked once at the end of a
// macro-flow. The label is a human-readable name; file naming beyond that is
// the implementation's concern.
type Saver interface {
	Save(ctx context.Context, dir, label, jsonData, text string) *future.Future[string]
}
