// Package event provides the streaming side channel for pipeline execution.
//
// The engine and the provider adapters publish events here; hosts subscribe
// by passing a channel through the unit configuration. The engine never
// interprets event payloads, and emission never blocks: if the subscriber
// falls behind, events are dropped rather than stalling execution.
package event

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when a macro-flow run begins.
	RunStart Type = "run_start"

	// RunEnd fires when a macro-flow run completes successfully.
	RunEnd Type = "run_end"

	// RunError fires when a run terminates with an error.
	RunError Type = "run_error"
)

// Stage lifecycle events
const (
	// StageStart fires when a macro-flow stage begins.
	StageStart Type = "stage_start"

	// StageEnd fires when a macro-flow stage completes.
	StageEnd Type = "stage_end"
)

// Unit lifecycle events
const (
	// UnitStart fires when a unit of work begins executing.
	UnitStart Type = "unit_start"

	// UnitEnd fires when a unit of work captures its output.
	UnitEnd Type = "unit_end"

	// Delta fires for each streamed output fragment.
	Delta Type = "delta"
)

// Artifact events
const (
	// Saved fires when the terminal artifacts have been written.
	Saved Type = "saved"
)

// Event represents an observable occurrence during chain execution.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// Stage is the macro-flow stage index for stage and unit events.
	Stage int

	// Ordinal is the reasoning-step ordinal for unit events, 0 otherwise.
	Ordinal int

	// Delta contains the streamed fragment for Delta events.
	Delta string

	// Output contains the captured output for UnitEnd and RunEnd events.
	Output string

	// Path contains the artifact location for Saved events.
	Path string

	// Err contains the error for RunError events.
	Err error
}

// Emit sends e to ch without blocking. A nil channel or a full buffer drops
// the event.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
	}
}
