package chain

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/cot"
	"github.com/MaxiDonkey/synkflow/future"
	"github.com/MaxiDonkey/synkflow/pipeline"
)

// fakeExecutor replies via fn, echoing the input when fn is nil.
type fakeExecutor struct {
	mu     sync.Mutex
	inputs []string
	fn     func(input string) (string, error)
}

func (f *fakeExecutor) reply(input string) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(input)
	}
	return input, nil
}

func (f *fakeExecutor) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

func (f *fakeExecutor) Execute(ctx context.Context, cfg synkflow.Config) *future.Future[string] {
	return future.Go(func() (string, error) { return f.reply(cfg.Input) })
}

func (f *fakeExecutor) ExecuteBatch(ctx context.Context, cfg synkflow.Config, prompts []string) *future.Future[string] {
	return future.Go(func() (string, error) {
		outs := make([]string, 0, len(prompts))
		for _, p := range prompts {
			out, err := f.reply(p)
			if err != nil {
				return "", err
			}
			outs = append(outs, out)
		}
		return strings.Join(outs, "\n\n"), nil
	})
}

func mustParse(t *testing.T, text string) cot.Chain {
	t.Helper()
	chain, err := cot.Parse(text, true)
	require.NoError(t, err)
	return chain
}

func runPipe(t *testing.T, p *pipeline.Pipeline) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := &pipeline.Scheduler{OnError: func(string) {}}
	_, err := s.Run(ctx, p).Await(ctx)
	require.NoError(t, err)
}

func TestExpandSequential(t *testing.T) {
	t.Run("one unit per step with stamped fields", func(t *testing.T) {
		exec := &fakeExecutor{}
		proc := NewProcessor(synkflow.NewConfig(
			synkflow.WithExecutor(exec),
			synkflow.WithModel("test-model"),
		))
		steps := mustParse(t, "{\"step\":1}\n{\"step\":2}\n{\"step\":3}")

		err := proc.ExpandSequential(steps, func(cfg *synkflow.Config, step cot.Step) {
			cfg.Input = step.Source
		}, synkflow.KindJSON)
		require.NoError(t, err)
		require.Equal(t, 3, proc.Pipeline().Len())

		for i := 0; i < 3; i++ {
			cfg := proc.Pipeline().At(i).Config
			assert.Equal(t, i+1, cfg.Ordinal)
			assert.Equal(t, steps.Sources(), cfg.Steps)
			assert.Equal(t, synkflow.KindJSON, cfg.Kind)
			assert.Equal(t, synkflow.ModeSequential, cfg.Mode)
			assert.Equal(t, "test-model", cfg.Model)
		}
	})

	t.Run("nil configure is a configuration error", func(t *testing.T) {
		proc := NewProcessor(synkflow.NewConfig())
		err := proc.ExpandSequential(mustParse(t, "{\"step\":1}"), nil, synkflow.KindPlain)
		assert.True(t, synkflow.IsConfiguration(err))
		assert.Equal(t, 0, proc.Pipeline().Len())
	})

	t.Run("empty chain expands to nothing", func(t *testing.T) {
		proc := NewProcessor(synkflow.NewConfig())
		err := proc.ExpandSequential(nil, func(*synkflow.Config, cot.Step) {}, synkflow.KindPlain)
		require.NoError(t, err)
		assert.Equal(t, 0, proc.Pipeline().Len())
	})
}

func TestExpandParallel(t *testing.T) {
	t.Run("single batch unit over all prompts", func(t *testing.T) {
		exec := &fakeExecutor{}
		proc := NewProcessor(synkflow.NewConfig(synkflow.WithExecutor(exec)))

		err := proc.ExpandParallel("q1\nq2\nq3", func(cfg *synkflow.Config) {
			cfg.Mode = synkflow.ModeWebParallel
		})
		require.NoError(t, err)
		require.Equal(t, 1, proc.Pipeline().Len())

		cfg := proc.Pipeline().At(0).Config
		assert.Equal(t, synkflow.ModeWebParallel, cfg.Mode)
		assert.Equal(t, synkflow.KindPlain, cfg.Kind)
		assert.Equal(t, []string{"q1", "q2", "q3"}, cfg.Prompts())
	})

	t.Run("nil configure is a configuration error", func(t *testing.T) {
		proc := NewProcessor(synkflow.NewConfig())
		err := proc.ExpandParallel("q", nil)
		assert.True(t, synkflow.IsConfiguration(err))
	})
}

func TestFlush(t *testing.T) {
	t.Run("json stage fills the json accumulator", func(t *testing.T) {
		exec := &fakeExecutor{}
		proc := NewProcessor(synkflow.NewConfig(
			synkflow.WithExecutor(exec),
			synkflow.WithKind(synkflow.KindJSON),
		))
		steps := mustParse(t, `{"a":1}`+"\n"+`{"b":2}`)
		require.NoError(t, proc.ExpandSequential(steps, func(cfg *synkflow.Config, step cot.Step) {
			cfg.Input = step.Source
		}, synkflow.KindJSON))
		runPipe(t, proc.Pipeline())

		proc.Flush()
		assert.Equal(t, "{\"a\":1},\n{\"b\":2}", proc.JSON())
		assert.Equal(t, "", proc.Text())
		assert.Equal(t, 0, proc.Pipeline().Len())
	})

	t.Run("plain stage escapes line breaks into the text accumulator", func(t *testing.T) {
		exec := &fakeExecutor{fn: func(string) (string, error) {
			return "line one\nline two", nil
		}}
		proc := NewProcessor(synkflow.NewConfig(synkflow.WithExecutor(exec)))
		require.NoError(t, proc.ExpandSequential(mustParse(t, `{"step":1}`), func(cfg *synkflow.Config, step cot.Step) {
			cfg.Input = step.Source
		}, synkflow.KindPlain))
		runPipe(t, proc.Pipeline())

		proc.Flush()
		assert.Equal(t, `line one\nline two`, proc.Text())
		assert.NotContains(t, proc.Text(), "\n")
	})

	t.Run("second flush extends rather than restarts", func(t *testing.T) {
		exec := &fakeExecutor{}
		proc := NewProcessor(synkflow.NewConfig(synkflow.WithExecutor(exec)))

		expand := func(input string) {
			require.NoError(t, proc.ExpandSequential(mustParse(t, `{"step":1}`), func(cfg *synkflow.Config, step cot.Step) {
				cfg.Input = input
			}, synkflow.KindPlain))
			runPipe(t, proc.Pipeline())
			proc.Flush()
		}

		expand("first")
		expand("second")
		assert.Equal(t, `first\n\nsecond`, proc.Text())
	})

	t.Run("empty pipeline flushes to nothing", func(t *testing.T) {
		proc := NewProcessor(synkflow.NewConfig())
		proc.Flush()
		assert.Equal(t, "", proc.JSON())
		assert.Equal(t, "", proc.Text())
	})
}

func TestBeginStage(t *testing.T) {
	t.Run("flushes the previous stage and switches kinds", func(t *testing.T) {
		exec := &fakeExecutor{}
		proto := synkflow.NewConfig(
			synkflow.WithExecutor(exec),
			synkflow.WithModel("m"),
			synkflow.WithKind(synkflow.KindJSON),
		)
		proc := NewProcessor(proto)
		require.NoError(t, proc.ExpandSequential(mustParse(t, `{"a":1}`), func(cfg *synkflow.Config, step cot.Step) {
			cfg.Input = step.Source
		}, synkflow.KindJSON))
		runPipe(t, proc.Pipeline())

		clone := proc.BeginStage(synkflow.KindPlain)
		assert.Equal(t, `{"a":1}`, proc.JSON())
		assert.Equal(t, 0, proc.Pipeline().Len())
		assert.Equal(t, "m", clone.Model)
	})

	t.Run("two-stage run keeps accumulators separate", func(t *testing.T) {
		// JSON collection stage followed by a plain writing stage, the way
		// the macro-flow drives it.
		exec := &fakeExecutor{}
		proc := NewProcessor(synkflow.NewConfig(
			synkflow.WithExecutor(exec),
			synkflow.WithKind(synkflow.KindJSON),
		))

		require.NoError(t, proc.ExpandSequential(mustParse(t, `{"q":"one"}`+"\n"+`{"q":"two"}`), func(cfg *synkflow.Config, step cot.Step) {
			cfg.Input = step.Source
		}, synkflow.KindJSON))
		runPipe(t, proc.Pipeline())

		proc.BeginStage(synkflow.KindPlain)
		require.NoError(t, proc.ExpandSequential(mustParse(t, `{"step":1}`), func(cfg *synkflow.Config, step cot.Step) {
			cfg.Input = "prose output"
		}, synkflow.KindPlain))
		runPipe(t, proc.Pipeline())
		proc.Flush()

		assert.Equal(t, "{\"q\":\"one\"},\n{\"q\":\"two\"}", proc.JSON())
		assert.Equal(t, "prose output", proc.Text())
	})
}
