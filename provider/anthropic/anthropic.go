// Package anthropic adapts the Anthropic SDK to the synkflow executor
// capability.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/event"
	"github.com/MaxiDonkey/synkflow/future"
	"github.com/MaxiDonkey/synkflow/provider/internal/batch"
)

const DefaultModel = "claude-sonnet-4-20250514"

// Client wraps the Anthropic SDK to implement synkflow.Executor.
type Client struct {
	sdk   *anthropic.Client
	model string
}

// New creates a new Anthropic client. Without WithAPIKey, the SDK reads the
// ANTHROPIC_API_KEY environment variable.
func New(opts ...ClientOption) *Client {
	c := &Client{model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	if c.sdk == nil {
		sdk := anthropic.NewClient()
		c.sdk = &sdk
	}
	return c
}

// ClientOption configures the Anthropic client.
type ClientOption func(*Client)

// WithAPIKey sets the API key explicitly instead of using the environment.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		sdk := anthropic.NewClient(option.WithAPIKey(key))
		c.sdk = &sdk
	}
}

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

	resp, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return "", wrapError(ctx, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

func (c *Client) stream(ctx context.Context, cfg synkflow.Config, params anthropic.MessageNewParams) (string, error) {
	stream := c.sdk.Messages.NewStreaming(ctx, params)

	var b strings.Builder
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return "", synkflow.Abort(err)
		}
		ev := stream.Current()
		if ev.Type == "content_block_delta" {
			delta := ev.AsContentBlockDelta()
			if textDelta := delta.Delta.AsTextDelta(); textDelta.Type == "text_delta" {
				b.WriteString(textDelta.Text)
				event.Emit(cfg.Events, event.Event{Type: event.Delta, Ordinal: cfg.Ordinal, Delta: textDelta.Text})
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", wrapError(ctx, err)
	}
	return b.String(), nil
}

func (c *Client) params(cfg synkflow.Config, prompt string) anthropic.MessageNewParams {
	model := c.model
	if cfg.Model != "" {
		model = cfg.Model
	}

	maxTokens := int64(4096)
	if cfg.MaxTokens > 0 {
		maxTokens = int64(cfg.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if cfg.Temperature != nil {
		params.Temperature = anthropic.Float(*cfg.Temperature)
	}
	return params
}

var _ synkflow.Executor = (*Client)(nil)
