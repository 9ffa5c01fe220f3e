package synkflow

import "github.com/MaxiDonkey/synkflow/event"

// Option is a functional option for building a Config.
type Option func(*Config)

// NewConfig builds a Config from functional options. Unset fields keep their
// zero values; Mode defaults to ModeSequential and Kind to KindPlain.
func NewConfig(opts ...Option) Config {
	c := Config{
		Mode: ModeSequential,
		Kind: KindPlain,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// With returns a clone of c with the given options applied.
func (c Config) With(opts ...Option) Config {
	out := c.Clone()
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

// WithInput sets the prompt text.
func WithInput(input string) Option {
	return func(c *Config) { c.Input = input }
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithMaxTokens caps generation length.
func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = &t }
}

// WithMode selects sequential or fan-out execution.
func WithMode(m Mode) Option {
	return func(c *Config) { c.Mode = m }
}

// WithKind selects the output aggregation kind.
func WithKind(k OutputKind) Option {
	return func(c *Config) { c.Kind = k }
}

// WithExecutor sets the prompt execution capability.
func WithExecutor(e Executor) Option {
	return func(c *Config) { c.Executor = e }
}

// WithEvents sets the streaming side channel.
func WithEvents(ch chan<- event.Event) Option {
	return func(c *Config) { c.Events = ch }
}

// WithBefore sets the input-producing hook.
func WithBefore(fn BeforeFunc) Option {
	return func(c *Config) { c.Before = fn }
}

// WithAfter sets the output post-processing hook.
func WithAfter(fn AfterFunc) Option {
	return func(c *Config) { c.After = fn }
}
