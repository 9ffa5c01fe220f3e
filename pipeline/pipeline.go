package pipeline

import (
	"strings"
)

// Pipeline is an ordered, mutable sequence of units of work. Insertion order
// is execution order. Pipelines are owned by a single chain processor and
// must not be mutated while a scheduler run is in flight.
type Pipeline struct {
	units []*Unit
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Add appends a unit to the sequence.
func (p *Pipeline) Add(u *Unit) {
	p.units = append(p.units, u)
}

// Clear empties the sequence. Used at stage boundaries after aggregation.
func (p *Pipeline) Clear() {
	p.units = nil
}

// Len returns the number of units.
func (p *Pipeline) Len() int {
	return len(p.units)
}

// At returns the unit at index i.
func (p *Pipeline) At(i int) *Unit {
	return p.units[i]
}

// Last returns the final unit, or nil for an empty pipeline.
func (p *Pipeline) Last() *Unit {
	if len(p.units) == 0 {
		return nil
	}
	return p.units[len(p.units)-1]
}

// LastOutput returns the captured output of the final unit, or the empty
// string for an empty pipeline.
func (p *Pipeline) LastOutput() string {
	if u := p.Last(); u != nil {
		return u.Output()
	}
	return ""
}

// Aggregate concatenates the captured outputs of all units. Fragments are
// joined with ",\n" for JSON units and a blank line for plain units, per
// each unit's configured kind. With resetBase the first fragment becomes the
// new base with no leading separator; without it every fragment, including
// the first, is preceded by its separator, so the result can extend an
// existing accumulator. Re-aggregating an unchanged pipeline yields the same
// string.
func (p *Pipeline) Aggregate(resetBase bool) string {
	var b strings.Builder
	for i, u := range p.units {
		if !(i == 0 && resetBase) {
			b.WriteString(u.Config.Kind.Separator())
		}
		b.WriteString(u.Output())
	}
	return b.String()
}
