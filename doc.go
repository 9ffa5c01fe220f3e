// Package synkflow provides the shared vocabulary for promise-driven
// chain-of-thought pipelines: the unit configuration bag, the executor and
// persistence capabilities, and the categorized error types used across the
// engine.
//
// The engine itself is assembled from subpackages:
//
//   - [github.com/MaxiDonkey/synkflow/future]: single-value asynchronous
//     result containers with chainable continuations
//   - [github.com/MaxiDonkey/synkflow/pipeline]: units of work, ordered
//     pipelines and the strictly sequential scheduler
//   - [github.com/MaxiDonkey/synkflow/cot]: line-delimited JSON reasoning
//     step loading and sub-question extraction
//   - [github.com/MaxiDonkey/synkflow/chain]: the chain processor that
//     expands reasoning steps into pipeline units and merges stage output,
//     plus the clarify/research/synthesize/write macro-flow
//   - [github.com/MaxiDonkey/synkflow/client]: the unified provider client
//     with retry on transient errors
//
// # Basic Usage
//
// Run a four-stage reasoning flow against a provider:
//
//	c := client.New(client.Config{
//	    Keys: client.Keys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	})
//
//	flow, err := chain.NewFlow(chain.FlowConfig{
//	    Prompt:     "Why is the sky blue?",
//	    Clarify:    chain.MustChain(chain.DefaultClarify),
//	    Synthesize: chain.MustChain(chain.DefaultSynthesize),
//	    Write:      chain.MustChain(chain.DefaultWrite),
//	    Executor:   c,
//	    Model:      "claude-sonnet-4-20250514",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := flow.Run(ctx).Await(ctx)
//
// # Configuration
//
// A [Config] is the free-form configuration bag carried by each unit of
// work. Chain processors hold a prototype Config and clone it per step;
// cloning copies scalar fields by value and shares the executor handle, the
// event channel and the step list by reference. Build configurations with
// functional options:
//
//	cfg := synkflow.NewConfig(
//	    synkflow.WithModel("claude-sonnet-4-20250514"),
//	    synkflow.WithExecutor(c),
//	    synkflow.WithKind(synkflow.KindJSON),
//	)
//
// # Error Model
//
// Every error surfaced by the engine belongs to one of three categories:
// configuration errors (an empty pipeline scheduled, a missing configuration
// callback), parse errors (a malformed JSON line, a missing expected field)
// and execution errors (provider failure, cancellation). Use [IsConfiguration],
// [IsParse], [IsExecution] and [IsAborted] to classify, and [IsTransient] to
// decide retryability.
package synkflow
