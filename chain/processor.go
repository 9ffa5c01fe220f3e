// Package chain translates declarative reasoning steps into pipeline units
// and carries aggregated output across stage boundaries.
//
// A [Processor] exclusively owns its pipeline and its prototype
// configuration; each chain run should use its own Processor instance.
// [Flow] wires the reference four-stage macro-flow (clarify, parallel web
// research, synthesize, write) on top of the processor and the scheduler.
package chain

import (
	"strings"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/cot"
	"github.com/MaxiDonkey/synkflow/pipeline"
)

// StepConfigure finishes configuring one sequential unit for its reasoning
// step: model, input, hooks. The chain processor has already stamped the
// ordinal, the step-list back-reference and the output kind.
type StepConfigure func(cfg *synkflow.Config, step cot.Step)

// BatchConfigure finishes configuring the single unit that covers an entire
// fan-out batch of prompts.
type BatchConfigure func(cfg *synkflow.Config)

// Processor expands reasoning steps into pipeline units and aggregates
// JSON and plain-text output between stages.
type Processor struct {
	proto   synkflow.Config
	pipe    *pipeline.Pipeline
	kind    synkflow.OutputKind
	jsonAcc string
	textAcc string
}

// NewProcessor creates a processor around a prototype configuration. The
// prototype is cloned per expanded step; clones copy scalar fields by value
// and share the executor handle and event channel by reference.
func NewProcessor(proto synkflow.Config) *Processor {
	kind := proto.Kind
	if kind == "" {
		kind = synkflow.KindPlain
	}
	return &Processor{
		proto: proto,
		pipe:  pipeline.New(),
		kind:  kind,
	}
}

// Pipeline returns the processor's owned pipeline.
func (p *Processor) Pipeline() *pipeline.Pipeline { return p.pipe }

// JSON returns the running JSON accumulator: the joined fragments of every
// collected JSON stage, without the final array wrapping.
func (p *Processor) JSON() string { return p.jsonAcc }

// Text returns the running plain-text accumulator. Line breaks have been
// normalized to the literal two-character sequence `\n` so the text stays
// embeddable as a single-line JSON string value.
func (p *Processor) Text() string { return p.textAcc }

// Flush aggregates the current pipeline contents into the accumulator
// selected by the current stage's output kind, then clears the pipeline.
// The base resets only when the target accumulator is still empty, so a
// stage flushed twice extends rather than restarts its accumulator.
func (p *Processor) Flush() {
	if p.pipe.Len() == 0 {
		return
	}
	switch p.kind {
	case synkflow.KindJSON:
		p.jsonAcc += p.pipe.Aggregate(p.jsonAcc == "")
	default:
		p.textAcc += escapeLineBreaks(p.pipe.Aggregate(p.textAcc == ""))
	}
	p.pipe.Clear()
}

// BeginStage closes the previous stage, aggregating its pipeline contents
// into the running accumulator and clearing the pipeline, then switches the
// processor to the new stage's output kind. It returns a clone of the
// prototype for the caller about to configure the next stage.
func (p *Processor) BeginStage(kind synkflow.OutputKind) synkflow.Config {
	p.Flush()
	p.kind = kind
	return p.proto.Clone()
}

// ExpandSequential appends one unit per reasoning step, in step order. Each
// unit starts from a clone of the prototype stamped with the step's ordinal,
// a back-reference to the full step list and the stage's output kind;
// configure then finishes model and input for that one unit.
func (p *Processor) ExpandSequential(steps cot.Chain, configure StepConfigure, kind synkflow.OutputKind) error {
	if configure == nil {
		return &synkflow.ConfigError{Msg: "missing step configuration callback"}
	}
	sources := steps.Sources()
	for _, step := range steps {
		cfg := p.proto.Clone()
		cfg.Ordinal = step.Ordinal
		cfg.Steps = sources
		cfg.Kind = kind
		cfg.Mode = synkflow.ModeSequential
		configure(&cfg, step)
		p.pipe.Add(pipeline.NewUnit(cfg))
	}
	return nil
}

// ExpandParallel appends exactly one unit covering the entire batch of
// prompts, one prompt per non-empty line of promptsText. The unit's output
// kind is plain; configure finishes executor and model for the batch.
func (p *Processor) ExpandParallel(promptsText string, configure BatchConfigure) error {
	if configure == nil {
		return &synkflow.ConfigError{Msg: "missing batch configuration callback"}
	}
	cfg := p.proto.Clone()
	cfg.Input = promptsText
	cfg.Kind = synkflow.KindPlain
	cfg.Mode = synkflow.ModeParallel
	configure(&cfg)
	p.pipe.Add(pipeline.NewUnit(cfg))
	return nil
}

// escapeLineBreaks normalizes every line-break variant to the literal
// two-character sequence `\n`.
func escapeLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\n`)
	return strings.ReplaceAll(s, "\n", `\n`)
}
