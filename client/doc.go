// Package client provides a unified executor over all supported LLM
// backends. Requests are routed by model name, backends are lazily
// initialized, and transient failures (rate limits, server errors) are
// retried with exponential backoff.
//
// Basic usage:
//
//	c := client.New(client.Config{
//		Keys: client.Keys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	})
//
//	out, err := c.Execute(ctx, synkflow.NewConfig(
//		synkflow.WithInput("Explain promise pipelining."),
//		synkflow.WithModel("claude-sonnet-4-5"),
//	)).Await(ctx)
//
// The client satisfies synkflow.Executor, so it can be handed directly to a
// chain flow or a pipeline unit.
package client
