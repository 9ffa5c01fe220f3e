// Package google adapts the Google GenAI SDK to the synkflow executor
// capability.
package google

import (
	"context"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/event"
	"github.com/MaxiDonkey/synkflow/future"
	"github.com/MaxiDonkey/synkflow/provider/internal/batch"
)

const DefaultModel = "gemini-2.0-flash"

// Client wraps the Google GenAI SDK to implement synkflow.Executor.
type Client struct {
	sdk   *genai.Client
	model string
}

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		sdk:   sdk,
		model: DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ClientOption configures the Google client.
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
	model, config := c.request(cfg)
	contents := genai.Text(prompt)

	if cfg.Events != nil {
		return c.stream(ctx, cfg, model, contents, config)
	}

	resp, err := c.sdk.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", wrapError(ctx, err)
	}
	return collectText(resp), nil
}

func (c *Client) stream(ctx context.Context, cfg synkflow.Config, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	return drainStream(ctx, cfg, c.sdk.Models.GenerateContentStream(ctx, model, contents, config))
}

// drainStream accumulates a response stream, forwarding deltas to the event
// channel. A mid-stream error fails the whole execution rather than
// truncating it.
func drainStream(ctx context.Context, cfg synkflow.Config, seq iter.Seq2[*genai.GenerateContentResponse, error]) (string, error) {
	var b strings.Builder
	for resp, err := range seq {
		if err != nil {
			return "", wrapError(ctx, err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return "", synkflow.Abort(cerr)
		}
		if delta := collectText(resp); delta != "" {
			b.WriteString(delta)
			event.Emit(cfg.Events, event.Event{Type: event.Delta, Ordinal: cfg.Ordinal, Delta: delta})
		}
	}
	return b.String(), nil
}

func (c *Client) request(cfg synkflow.Config) (string, *genai.GenerateContentConfig) {
	model := c.model
	if cfg.Model != "" {
		model = cfg.Model
	}

	config := &genai.GenerateContentConfig{}
	if cfg.MaxTokens > 0 {
		config.MaxOutputTokens = int32(cfg.MaxTokens)
	}
	if cfg.Temperature != nil {
		temp := float32(*cfg.Temperature)
		config.Temperature = &temp
	}
	return model, config
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

var _ synkflow.Executor = (*Client)(nil)
