package aggregate

import (
	"fmt"
	"time"
)

// Policy decides what happens to a field when one of its sources is
// unavailable in the current pass.
type Policy int

const (
	// CarryPrevious keeps the field's value from the previous view. The field
	// is reported as carried, never silently zeroed: a dashboard must not
	// show "0 opportunities" when the real cause is a collaborator outage.
	CarryPrevious Policy = iota

	// Omit drops the field from the view entirely.
	Omit
)

// Inputs gives a compute function read-only access to the pass's source
// values. Every source the field declared in DependsOn is guaranteed present.
type Inputs struct {
	values Values
}

// Get returns the value of a source.
func (in Inputs) Get(id SourceID) (any, bool) {
	val, ok := in.values[id]
	return val, ok
}

// Value returns the value of a source, or nil when absent.
func (in Inputs) Value(id SourceID) any {
	return in.values[id]
}

// Field declares one output of the composed view: which sources it needs,
// what to do when they are unavailable, and how to compute it.
type Field struct {
	Name      string
	DependsOn []SourceID
	Policy    Policy
	Compute   func(in Inputs, now time.Time) any
}

// Composer builds Views from source values. Composition is pure: no I/O, no
// mutation of the inputs, so it is independently testable.
type Composer struct {
	fields []Field
}

// NewComposer creates a Composer from the given field declarations. Field
// names must be unique and every field needs a compute function.
func NewComposer(fields ...Field) (*Composer, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("aggregate: field with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("aggregate: duplicate field %q", f.Name)
		}
		if f.Compute == nil {
			return nil, fmt.Errorf("aggregate: field %q has no compute function", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return &Composer{fields: fields}, nil
}

// Compose builds a new view from the pass's values. A field is computed only
// when all its sources are available; otherwise its policy decides between
// carrying the previous value and omitting it. prev may be nil on the first
// pass.
func (c *Composer) Compose(prev *View, vals Values, now time.Time) *View {
	view := &View{
		Fields:     make(map[string]any, len(c.fields)),
		ComputedAt: now,
	}

	unavailable := make(map[SourceID]struct{})

	for _, field := range c.fields {
		missing := missingSources(field.DependsOn, vals)
		if len(missing) == 0 {
			view.Fields[field.Name] = field.Compute(Inputs{values: vals}, now)
			continue
		}

		view.Partial = true
		for _, id := range missing {
			unavailable[id] = struct{}{}
		}

		if field.Policy == CarryPrevious {
			if prevVal, ok := prev.Get(field.Name); ok {
				view.Fields[field.Name] = prevVal
				view.Carried = append(view.Carried, field.Name)
				continue
			}
		}
		view.Missing = append(view.Missing, field.Name)
	}

	for id := range unavailable {
		view.Unavailable = append(view.Unavailable, id)
	}

	return view
}

func missingSources(deps []SourceID, vals Values) []SourceID {
	var missing []SourceID
	for _, id := range deps {
		if _, ok := vals[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
