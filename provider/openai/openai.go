// Package openai adapts the OpenAI SDK to the synkflow executor capability.
package openai

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/event"
	"github.com/MaxiDonkey/synkflow/future"
	"github.com/MaxiDonkey/synkflow/provider/internal/batch"
)

const DefaultModel = "gpt-4o"

// Client wraps the OpenAI SDK to implement synkflow.Executor.
type Client struct {
	sdk   *openai.Client
	model string
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	sdk := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		sdk:   &sdk,
		model: DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures the OpenAI client.
type ClientOption func(*Client)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// Execute runs a single prompt and settles with its complete output. When
// the configuration carries an event channel the request streams and every
// delta is forwarded there.
func (c *Client) Execute(ctx context.Context, cfg synkflow.Config) *future.Future[string] {
	return future.Go(func() (string, error) {
		return c.complete(ctx, cfg, cfg.Input)
	})
}

// ExecuteBatch runs every prompt concurrently and settles once the whole
// batch completes, or rejects on the first failure.
func (c *Client) ExecuteBatch(ctx context.Context, cfg synkflow.Config, prompts []string) *future.Future[string] {
	return batch.Run(prompts, func(prompt string) *future.Future[string] {
		return future.Go(func() (string, error) {
			return c.complete(ctx, cfg, prompt)
		})
	})
}

func (c *Client) complete(ctx context.Context, cfg synkflow.Config, prompt string) (string, error) {
	params := c.params(cfg, prompt)
	if cfg.Events != nil {
		return c.stream(ctx, cfg, params)
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", synkflow.NewPermanentExecError("openai returned no choices", 0, nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) stream(ctx context.Context, cfg synkflow.Config, params openai.ChatCompletionNewParams) (string, error) {
	stream := c.sdk.Chat.Completions.NewStreaming(ctx, params)

	var b strings.Builder
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return "", synkflow.Abort(err)
		}
		chunk := stream.Current()
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			b.WriteString(chunk.Choices[0].Delta.Content)
			event.Emit(cfg.Events, event.Event{Type: event.Delta, Ordinal: cfg.Ordinal, Delta: chunk.Choices[0].Delta.Content})
		}
	}
	if err := stream.Err(); err != nil {
		return "", wrapError(ctx, err)
	}
	return b.String(), nil
}

func (c *Client) params(cfg synkflow.Config, prompt string) openai.ChatCompletionNewParams {
	model := c.model
	if cfg.Model != "" {
		model = cfg.Model
	}

	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		params.Temperature = openai.Float(*cfg.Temperature)
	}
	return params
}

var _ synkflow.Executor = (*Client)(nil)
