// Package websearch adapts an MCP (Model Context Protocol) server exposing a
// web-search tool to the synkflow executor capability. It backs the parallel
// research stage: each sub-question of a fan-out batch becomes one tool call,
// issued concurrently.
package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/event"
	"github.com/MaxiDonkey/synkflow/future"
	"github.com/MaxiDonkey/synkflow/provider/internal/batch"
)

// DefaultTool is the tool name looked up on the MCP server when none is
// configured.
const DefaultTool = "web_search"

// Client proxies prompt execution to a web-search tool on an MCP server.
// It is safe for concurrent use, which the fan-out stage relies on.
type Client struct {
	session *client.Client
	tool    string
}

// Option configures the websearch client.
type Option func(*Client)

// WithTool selects the MCP tool invoked for each search.
func WithTool(name string) Option {
	return func(c *Client) {
		c.tool = name
	}
}

// New connects to an MCP server over stdio, initializes the session and
// verifies the search tool is available. The command is the server
// executable; args are passed to it.
func New(ctx context.Context, command string, env []string, args []string, opts ...Option) (*Client, error) {
	session, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("websearch: failed to create MCP client: %w", err)
	}
	return newFromSession(ctx, session, opts...)
}

// NewFromSession wraps an existing MCP client. The session is started and
// initialized here.
func NewFromSession(ctx context.Context, session *client.Client, opts ...Option) (*Client, error) {
	return newFromSession(ctx, session, opts...)
}

func newFromSession(ctx context.Context, session *client.Client, opts ...Option) (*Client, error) {
	c := &Client{session: session, tool: DefaultTool}
	for _, opt := range opts {
		opt(c)
	}

	if err := session.Start(ctx); err != nil {
		return nil, fmt.Errorf("websearch: failed to start MCP client: %w", err)
	}

	_, err := session.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "synkflow-websearch",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("websearch: failed to initialize MCP session: %w", err)
	}

	if err := c.verifyTool(ctx); err != nil {
		session.Close()
		return nil, err
	}
	return c, nil
}

// verifyTool checks the configured tool exists on the server.
func (c *Client) verifyTool(ctx context.Context) error {
	result, err := c.session.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("websearch: failed to list tools: %w", err)
	}
	for _, t := range result.Tools {
		if t.Name == c.tool {
			return nil
		}
	}
	return &synkflow.ConfigError{Msg: fmt.Sprintf("websearch: MCP server has no %q tool", c.tool)}
}

// Close closes the connection to the MCP server.
func (c *Client) Close() error {
	return c.session.Close()
}

// Execute runs one search query and settles with the tool's text output.
func (c *Client) Execute(ctx context.Context, cfg synkflow.Config) *future.Future[string] {
	return future.Go(func() (string, error) {
		return c.search(ctx, cfg, cfg.Input)
	})
}

// ExecuteBatch searches every query concurrently and settles once the whole
// batch completes, or rejects on the first failure.
func (c *Client) ExecuteBatch(ctx context.Context, cfg synkflow.Config, prompts []string) *future.Future[string] {
	return batch.Run(prompts, func(prompt string) *future.Future[string] {
		return future.Go(func() (string, error) {
			return c.search(ctx, cfg, prompt)
		})
	})
}

func (c *Client) search(ctx context.Context, cfg synkflow.Config, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", synkflow.Abort(err)
	}

	result, err := c.session.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      c.tool,
			Arguments: map[string]any{"query": query},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", synkflow.Abort(err)
		}
		return "", synkflow.NewTransientExecError("websearch tool call failed", 0, err)
	}

	text := flatten(result)
	if result.IsError {
		return "", synkflow.NewPermanentExecError("websearch tool reported an error", 0, fmt.Errorf("%s", text))
	}

	event.Emit(cfg.Events, event.Event{Type: event.Delta, Ordinal: cfg.Ordinal, Delta: text})
	return text, nil
}

// flatten concatenates the text content blocks of a tool result.
func flatten(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var _ synkflow.Executor = (*Client)(nil)
