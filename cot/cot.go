// Package cot loads chains of thought: ordered lists of reasoning steps
// described as line-delimited JSON, one self-contained object per physical
// line. The package also extracts embedded sub-questions for the parallel
// research fan-out.
//
// The loader treats each line as opaque text; the conventional
// {"step": N, "title": ..., "instructions": [...]} shape can be decoded on
// demand with [Step.Detail] but is never required.
package cot

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/MaxiDonkey/synkflow"
)

// Step is one reasoning step: its 1-based position in the chain and the raw
// JSON line that describes it.
type Step struct {
	Ordinal int
	Source  string
}

// Detail is the conventional shape of a reasoning-step line.
type Detail struct {
	Step         int      `json:"step"`
	Title        string   `json:"title"`
	Instructions []string `json:"instructions"`
}

// Detail decodes the step's source line into its conventional shape.
func (s Step) Detail() (Detail, error) {
	var d Detail
	if err := json.Unmarshal([]byte(s.Source), &d); err != nil {
		return Detail{}, &synkflow.ParseError{Line: s.Ordinal, Msg: "invalid reasoning step", Cause: err}
	}
	return d, nil
}

// Chain is an ordered list of reasoning steps.
type Chain []Step

// Len returns the number of steps.
func (c Chain) Len() int { return len(c) }

// Sources returns the raw source lines in step order.
func (c Chain) Sources() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Source
	}
	return out
}

// Normalize rewrites run-together JSON objects onto separate lines and
// canonicalizes line endings, so `{"a":1}{"b":2}` splits into two lines
// before parsing.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "}{", "}\n{")
}

// Parse splits text into reasoning steps, one per non-empty line. With
// validate set, every non-empty line must parse as JSON or the whole load
// fails with a parse error.
func Parse(text string, validate bool) (Chain, error) {
	var chain Chain
	for i, line := range strings.Split(Normalize(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if validate && !json.Valid([]byte(line)) {
			return nil, &synkflow.ParseError{Line: i + 1, Msg: "invalid JSON in reasoning step"}
		}
		chain = append(chain, Step{Ordinal: len(chain) + 1, Source: line})
	}
	return chain, nil
}

// Load reads a chain-of-thought file and parses it per [Parse].
func Load(path string, validate bool) (Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), validate)
}

// SubQuestions extracts the "web_search" field from every non-empty line of
// jsonLines and joins the values with newlines, in line order. Every line
// must parse as a JSON object carrying the field, else the extraction fails
// with a parse error. Trailing fragment commas left by JSON aggregation are
// tolerated.
func SubQuestions(jsonLines string) (string, error) {
	var questions []string
	for i, line := range strings.Split(Normalize(jsonLines), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, ",")
		if line == "" {
			continue
		}

		var obj struct {
			WebSearch *string `json:"web_search"`
		}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return "", &synkflow.ParseError{Line: i + 1, Msg: "invalid JSON in sub-question line", Cause: err}
		}
		if obj.WebSearch == nil {
			return "", &synkflow.ParseError{Line: i + 1, Msg: `missing "web_search" field`}
		}
		questions = append(questions, *obj.WebSearch)
	}
	return strings.Join(questions, "\n"), nil
}
