package chain

import (
	"context"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/cot"
	"github.com/MaxiDonkey/synkflow/event"
	"github.com/MaxiDonkey/synkflow/future"
	"github.com/MaxiDonkey/synkflow/pipeline"
)

// Stage indices of the reference macro-flow.
const (
	StageClarify = iota
	StageResearch
	StageSynthesize
	StageWrite
)

// FlowConfig configures a four-stage macro-flow run.
type FlowConfig struct {
	// Prompt is the user's question.
	Prompt string

	// Clarify, Synthesize and Write are the reasoning-step lists for the
	// sequential stages. Clarify must instruct the model to emit one JSON
	// object per line carrying a "web_search" field; the research stage
	// fans out over those sub-questions.
	Clarify    cot.Chain
	Synthesize cot.Chain
	Write      cot.Chain

	// Executor runs the sequential prompts.
	Executor synkflow.Executor

	// Research runs the parallel web-research batch. Nil falls back to
	// Executor.
	Research synkflow.Executor

	// Saver persists the terminal artifacts. Nil skips persistence.
	Saver synkflow.Saver

	// OutDir and Label select where and under what name artifacts land.
	OutDir string
	Label  string

	// Model is stamped on every unit's configuration.
	Model string

	// MaxTokens caps generation length for every unit. Zero keeps the
	// executor's default.
	MaxTokens int

	// Events receives run, stage, unit and delta events.
	Events chan<- event.Event

	// OnError overrides the process-wide scheduler error delegate for this
	// run.
	OnError pipeline.ErrorFunc
}

// Flow is the reference orchestration: clarify (sequential, JSON output) →
// parallel web research → synthesize (sequential, plain) → write
// (sequential, plain) → artifact save. It owns one processor and one
// scheduler; a Flow instance serves exactly one Run.
type Flow struct {
	cfg   FlowConfig
	proc  *Processor
	sched *pipeline.Scheduler
}

// NewFlow validates the configuration and prepares a flow run.
func NewFlow(cfg FlowConfig) (*Flow, error) {
	if cfg.Prompt == "" {
		return nil, &synkflow.ConfigError{Msg: "flow: empty prompt"}
	}
	if cfg.Executor == nil {
		return nil, &synkflow.ConfigError{Msg: "flow: no executor"}
	}
	if cfg.Clarify.Len() == 0 || cfg.Synthesize.Len() == 0 || cfg.Write.Len() == 0 {
		return nil, &synkflow.ConfigError{Msg: "flow: every stage needs at least one reasoning step"}
	}

	proto := synkflow.NewConfig(
		synkflow.WithModel(cfg.Model),
		synkflow.WithMaxTokens(cfg.MaxTokens),
		synkflow.WithExecutor(cfg.Executor),
		synkflow.WithEvents(cfg.Events),
		synkflow.WithKind(synkflow.KindJSON),
	)

	return &Flow{
		cfg:   cfg,
		proc:  NewProcessor(proto),
		sched: &pipeline.Scheduler{OnError: cfg.OnError},
	}, nil
}

// Processor exposes the flow's chain processor, mainly so hosts can read the
// accumulators after the run settles.
func (f *Flow) Processor() *Processor { return f.proc }

// Run drives the four stages in order and returns a future that fulfills
// with the saved artifact path (or, without a saver, the final text
// accumulator). Any stage failure short-circuits the remaining stages
// through the standard rejection path.
func (f *Flow) Run(ctx context.Context) *future.Future[string] {
	event.Emit(f.cfg.Events, event.Event{Type: event.RunStart})

	out := f.stage(ctx, StageClarify, f.clarify)
	out = f.next(ctx, out, StageResearch, f.research)
	out = f.next(ctx, out, StageSynthesize, f.synthesize)
	out = f.next(ctx, out, StageWrite, f.write)

	done := future.Compose(out, func(string) *future.Future[string] {
		return f.finish(ctx)
	})

	return done.Then(func(result string) {
		event.Emit(f.cfg.Events, event.Event{Type: event.RunEnd, Output: result})
	}).Catch(func(err error) {
		event.Emit(f.cfg.Events, event.Event{Type: event.RunError, Err: err})
	})
}

// next chains the previous stage's future into stage fn.
func (f *Flow) next(ctx context.Context, prev *future.Future[string], stage int, fn func(context.Context) *future.Future[string]) *future.Future[string] {
	return future.Compose(prev, func(string) *future.Future[string] {
		return f.stage(ctx, stage, fn)
	})
}

// stage brackets a stage with start and end events. StageStart is emitted
// before the stage launches, so it precedes every unit event of the stage.
func (f *Flow) stage(ctx context.Context, index int, fn func(context.Context) *future.Future[string]) *future.Future[string] {
	event.Emit(f.cfg.Events, event.Event{Type: event.StageStart, Stage: index})
	return fn(ctx).Then(func(string) {
		event.Emit(f.cfg.Events, event.Event{Type: event.StageEnd, Stage: index})
	})
}

// clarify expands the clarify steps sequentially with JSON output. Each
// unit's input is its step's source followed by the user prompt; steps whose
// source carries no literal instructions reuse the previous unit's resolved
// output verbatim.
func (f *Flow) clarify(ctx context.Context) *future.Future[string] {
	f.proc.BeginStage(synkflow.KindJSON)

	pipe := f.proc.Pipeline()
	prompt := f.cfg.Prompt
	err := f.proc.ExpandSequential(f.cfg.Clarify, func(cfg *synkflow.Config, step cot.Step) {
		cfg.Before = func() string {
			if prev := previousOutput(pipe, step); prev != "" {
				return prev
			}
			return step.Source + "\n\n" + prompt
		}
	}, synkflow.KindJSON)
	if err != nil {
		return future.Rejected[string](err)
	}

	return f.sched.Run(ctx, pipe)
}

// research extracts the clarify stage's sub-questions and fans out over them
// with a single batch unit.
func (f *Flow) research(ctx context.Context) *future.Future[string] {
	f.proc.BeginStage(synkflow.KindPlain)

	subs, err := cot.SubQuestions(f.proc.JSON())
	if err != nil {
		return future.Rejected[string](err)
	}

	err = f.proc.ExpandParallel(subs, func(cfg *synkflow.Config) {
		cfg.Mode = synkflow.ModeWebParallel
		if f.cfg.Research != nil {
			cfg.Executor = f.cfg.Research
		}
	})
	if err != nil {
		return future.Rejected[string](err)
	}

	return f.sched.Run(ctx, f.proc.Pipeline())
}

// synthesize folds the accumulated research into the synthesize steps.
func (f *Flow) synthesize(ctx context.Context) *future.Future[string] {
	return f.sequentialStage(ctx, f.cfg.Synthesize, func() string {
		return f.proc.Text()
	})
}

// write produces the final document from the synthesis output.
func (f *Flow) write(ctx context.Context) *future.Future[string] {
	return f.sequentialStage(ctx, f.cfg.Write, func() string {
		return f.proc.Text()
	})
}

// sequentialStage expands a plain-output sequential stage whose units
// combine their step source with the context produced so far. A step without
// literal source text reuses the previous unit's resolved output as input.
func (f *Flow) sequentialStage(ctx context.Context, steps cot.Chain, contextText func() string) *future.Future[string] {
	f.proc.BeginStage(synkflow.KindPlain)

	pipe := f.proc.Pipeline()
	err := f.proc.ExpandSequential(steps, func(cfg *synkflow.Config, step cot.Step) {
		cfg.Before = func() string {
			if prev := previousOutput(pipe, step); prev != "" {
				return prev
			}
			return step.Source + "\n\n" + contextText()
		}
	}, synkflow.KindPlain)
	if err != nil {
		return future.Rejected[string](err)
	}

	return f.sched.Run(ctx, pipe)
}

// previousOutput returns the resolved output of the unit preceding step in
// the current stage when the step carries no literal source, so that a
// source-less step reuses its predecessor's output verbatim. Returns "" for
// steps with source text and for the first step of a stage.
func previousOutput(pipe *pipeline.Pipeline, step cot.Step) string {
	if step.Source != "" || step.Ordinal < 2 || step.Ordinal > pipe.Len() {
		return ""
	}
	return pipe.At(step.Ordinal - 2).Output()
}

// finish closes the last stage and persists the artifacts.
func (f *Flow) finish(ctx context.Context) *future.Future[string] {
	f.proc.Flush()

	if f.cfg.Saver == nil {
		return future.Resolved(f.proc.Text())
	}

	saved := f.cfg.Saver.Save(ctx, f.cfg.OutDir, f.cfg.Label, f.proc.JSON(), f.proc.Text())
	return saved.Then(func(path string) {
		event.Emit(f.cfg.Events, event.Event{Type: event.Saved, Path: path})
	})
}
