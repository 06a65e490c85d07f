package aggregate

import "time"

// SourceID identifies one independent data collaborator feeding the
// aggregation, e.g. "organizations" or "opportunities".
type SourceID string

// Values holds the results of one collection pass, keyed by source. A source
// that failed or timed out is simply absent.
type Values map[SourceID]any

// Errors records why sources are absent from a Values map.
type Errors map[SourceID]error

// View is a composed read-only snapshot built from multiple sources.
//
// ComputedAt is the reference instant of the pass that produced the view;
// compute functions receive it instead of re-reading the wall clock, so any
// relative date bucketing ("this week") is stable for the lifetime of the
// view.
type View struct {
	Fields     map[string]any
	ComputedAt time.Time

	// Partial is true when at least one field could not be computed from the
	// current pass.
	Partial bool

	// Carried lists fields that kept their value from the previous view
	// because a required source was unavailable.
	Carried []string

	// Missing lists fields that are absent entirely: a required source was
	// unavailable and there was no previous value to carry.
	Missing []string

	// Unavailable lists the sources that were required by at least one field
	// but absent from the pass.
	Unavailable []SourceID
}

// Get returns a field value and whether it is present in the view.
func (v *View) Get(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v.Fields[name]
	return val, ok
}

// Float64 returns a numeric field, or ok=false when the field is absent or
// not numeric.
func (v *View) Float64(name string) (float64, bool) {
	val, ok := v.Get(name)
	if !ok {
		return 0, false
	}
	switch n := val.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Int returns an integer field, or ok=false when absent or not an integer.
func (v *View) Int(name string) (int, bool) {
	val, ok := v.Get(name)
	if !ok {
		return 0, false
	}
	switch n := val.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
