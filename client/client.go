package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/future"
	"github.com/MaxiDonkey/synkflow/internal/retry"
	"github.com/MaxiDonkey/synkflow/provider/anthropic"
	"github.com/MaxiDonkey/synkflow/provider/google"
	"github.com/MaxiDonkey/synkflow/provider/openai"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// ProviderForModel infers the backend from a model name. The empty string is
// returned when the model matches no known family.
func ProviderForModel(model string) Provider {
	switch {
	case strings.HasPrefix(model, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(model, "gpt"), strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return ProviderOpenAI
	case strings.HasPrefix(model, "gemini"):
		return ProviderGoogle
	}
	return ""
}

// Keys holds API keys for the supported backends. Only configure keys for
// providers you intend to use.
type Keys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// ErrMissingAPIKey is returned when a model is routed to a provider that has
// no key configured.
type ErrMissingAPIKey struct {
	Provider Provider
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrUnknownProvider is returned when a model matches no known backend.
type ErrUnknownProvider struct {
	Model string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("cannot determine provider for model %q", e.Model)
}

// Config holds configuration for creating a unified client.
type Config struct {
	// Keys contains authentication keys for each backend.
	Keys Keys

	// Retry configures retry behavior for transient errors.
	// If nil, the default configuration is used (5 attempts with
	// exponential backoff).
	Retry *retry.Config
}

// Client routes prompt execution to the backend implied by the request's
// model and retries transient failures. Backend clients are lazily
// initialized when first needed.
//
// Client implements synkflow.Executor and is the executor normally handed to
// a chain flow.
type Client struct {
	keys  Keys
	retry retry.Config

	// Lazy-initialized backends (protected by mutex)
	mu              sync.RWMutex
	anthropicClient *anthropic.Client
	openaiClient    *openai.Client
	googleClient    *google.Client
	googleInitErr   error
}

// New creates a unified client with the given configuration.
func New(cfg Config) *Client {
	rc := retry.DefaultConfig()
	if cfg.Retry != nil {
		rc = *cfg.Retry
	}
	return &Client{keys: cfg.Keys, retry: rc}
}

// Execute routes the request to the backend implied by cfg.Model and settles
// with its output. Transient backend errors are retried before the future
// rejects.
func (c *Client) Execute(ctx context.Context, cfg synkflow.Config) *future.Future[string] {
	return future.Go(func() (string, error) {
		exec, err := c.executorFor(ctx, cfg.Model)
		if err != nil {
			return "", err
		}
		return retry.Do(ctx, c.retry, synkflow.IsTransient, func() (string, error) {
			return exec.Execute(ctx, cfg).Await(ctx)
		})
	})
}

// ExecuteBatch routes a fan-out batch to the backend implied by cfg.Model.
// The whole batch is retried as one unit on transient failure.
func (c *Client) ExecuteBatch(ctx context.Context, cfg synkflow.Config, prompts []string) *future.Future[string] {
	return future.Go(func() (string, error) {
		exec, err := c.executorFor(ctx, cfg.Model)
		if err != nil {
			return "", err
		}
		return retry.Do(ctx, c.retry, synkflow.IsTransient, func() (string, error) {
			return exec.ExecuteBatch(ctx, cfg, prompts).Await(ctx)
		})
	})
}

func (c *Client) executorFor(ctx context.Context, model string) (synkflow.Executor, error) {
	switch ProviderForModel(model) {
	case ProviderAnthropic:
		return c.getAnthropic(model)
	case ProviderOpenAI:
		return c.getOpenAI(model)
	case ProviderGoogle:
		return c.getGoogle(ctx, model)
	}
	return nil, &synkflow.ConfigError{Msg: "unknown provider", Cause: &ErrUnknownProvider{Model: model}}
}

func (c *Client) getAnthropic(model string) (*anthropic.Client, error) {
	c.mu.RLock()
	if c.anthropicClient != nil {
		defer c.mu.RUnlock()
		return c.anthropicClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anthropicClient != nil {
		return c.anthropicClient, nil
	}
	if c.keys.Anthropic == "" {
		return nil, &synkflow.ConfigError{Msg: "missing API key", Cause: &ErrMissingAPIKey{Provider: ProviderAnthropic, Model: model}}
	}
	c.anthropicClient = anthropic.New(anthropic.WithAPIKey(c.keys.Anthropic))
	return c.anthropicClient, nil
}

func (c *Client) getOpenAI(model string) (*openai.Client, error) {
	c.mu.RLock()
	if c.openaiClient != nil {
		defer c.mu.RUnlock()
		return c.openaiClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openaiClient != nil {
		return c.openaiClient, nil
	}
	if c.keys.OpenAI == "" {
		return nil, &synkflow.ConfigError{Msg: "missing API key", Cause: &ErrMissingAPIKey{Provider: ProviderOpenAI, Model: model}}
	}
	c.openaiClient = openai.New(c.keys.OpenAI)
	return c.openaiClient, nil
}

func (c *Client) getGoogle(ctx context.Context, model string) (*google.Client, error) {
	c.mu.RLock()
	if c.googleClient != nil || c.googleInitErr != nil {
		defer c.mu.RUnlock()
		return c.googleClient, c.googleInitErr
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.googleClient != nil || c.googleInitErr != nil {
		return c.googleClient, c.googleInitErr
	}
	if c.keys.Google == "" {
		return nil, &synkflow.ConfigError{Msg: "missing API key", Cause: &ErrMissingAPIKey{Provider: ProviderGoogle, Model: model}}
	}
	c.googleClient, c.googleInitErr = google.New(ctx, c.keys.Google)
	return c.googleClient, c.googleInitErr
}

var _ synkflow.Executor = (*Client)(nil)
