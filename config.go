package synkflow

import (
	"strings"

	"github.com/MaxiDonkey/synkflow/event"
)

// Mode selects how a unit's prompt execution fans out.
type Mode string

const (
	// ModeSequential executes the unit's input as a single prompt.
	ModeSequential Mode = "sequential"

	// ModeParallel executes one prompt per line of the unit's input
	// concurrently; the unit settles when the whole batch completes.
	ModeParallel Mode = "parallel"

	// ModeWebParallel is ModeParallel backed by a web-research executor.
	ModeWebParallel Mode = "web_parallel"
)

// Batch reports whether the mode fans out over multiple prompts.
func (m Mode) Batch() bool { return m == ModeParallel || m == ModeWebParallel }

// OutputKind selects how a unit's captured output aggregates with its
// neighbors.
type OutputKind string

const (
	// KindJSON treats the output as a JSON fragment; fragments join with
	// ",\n" so the result can later be wrapped into a JSON array.
	KindJSON OutputKind = "json"

	// KindPlain treats the output as plain text; fragments join with a
	// blank line.
	KindPlain OutputKind = "plain"
)

// Separator returns the fragment join separator for the kind.
func (k OutputKind) Separator() string {
	if k == KindJSON {
		return ",\n"
	}
	return "\n\n"
}

// BeforeFunc produces a unit's effective input from whatever state the host
// has accumulated, immediately before execution.
type BeforeFunc func() string

// AfterFunc post-processes a unit's raw output. Display side effects are the
// host's concern; the returned string is what the unit captures.
type AfterFunc func(output string) string

// Config is the free-form configuration bag carried by one unit of work.
//
// Chain processors keep a prototype Config and clone it per step. Clone
// semantics are shallow: scalar fields are copied by value, while Executor,
// Events and Steps are shared handles copied by reference.
type Config struct {
	// Input is the prompt text, or for batch modes the line-delimited list
	// of prompts. A Before hook, when set, supersedes it at run time.
	Input string

	// Model identifies the model the executor should invoke.
	Model string

	// MaxTokens caps generation length. Zero means the executor's default.
	MaxTokens int

	// Temperature is the sampling temperature, nil for the default.
	Temperature *float64

	// Mode selects sequential or fan-out execution.
	Mode Mode

	// Kind selects the aggregation behavior for the unit's output.
	Kind OutputKind

	// Ordinal is the 1-based position of the reasoning step this unit was
	// expanded from, 0 for ad hoc units.
	Ordinal int

	// Steps is a back-reference to the raw source lines of the full
	// reasoning-step list, for hooks that append step content to the input.
	Steps []string

	// Executor is the prompt execution capability. Shared by reference.
	Executor Executor

	// Events is the optional streaming side channel. The engine forwards
	// provider deltas here and never interprets them. Shared by reference.
	Events chan<- event.Event

	// Before produces the effective input at run time.
	Before BeforeFunc

	// After post-processes the raw output before capture.
	After AfterFunc
}

// Clone returns a shallow copy of the configuration: value fields are
// duplicated, handles stay shared. Never deep-copies the executor.
func (c Config) Clone() Config {
	return c
}

// Prompts splits a batch input into individual prompts, one per non-empty
// line.
func (c Config) Prompts() []string {
	lines := strings.Split(strings.ReplaceAll(c.Input, "\r\n", "\n"), "\n")
	prompts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			prompts = append(prompts, line)
		}
	}
	return prompts
}
