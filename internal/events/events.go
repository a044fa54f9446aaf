// Package events defines the three event kinds that interrupt continuous
// integration - continuous (root-find), discrete (right-endpoint test) and
// preset-time - and the ordered CallbackSet that aggregates them.
// Registration order is the tie-break whenever several events are due at
// the same instant.
package events

import (
	"math"

	"github.com/san-kum/odyn/internal/ode"
)

// Effect mutates the state and/or the run's parameter block in place. The
// solver is the only caller and applies effects sequentially, so effect N
// sees the mutations of effect N-1.
type Effect func(x ode.State, p ode.Params, t float64)

// Condition is the scalar function whose zero crossing fires a continuous
// event.
type Condition func(x ode.State, t float64) float64

// BoolCondition is tested once at a step's right endpoint.
type BoolCondition func(x ode.State, t float64) bool

// Event is one of Continuous, Discrete or PresetTime.
type Event interface {
	isEvent()
}

// Continuous fires when Condition crosses zero inside a step; the crossing
// is located on the step's dense interpolant and the step is truncated
// there. A Terminal event stops the run right after its effect.
type Continuous struct {
	Condition Condition
	Effect    Effect
	Terminal  bool
}

func (Continuous) isEvent() {}

// Discrete fires when Condition is true at the step's right endpoint. No
// sub-step localization: appropriate for post-hoc resets where exact
// timing is not required.
type Discrete struct {
	Condition BoolCondition
	Effect    Effect
}

func (Discrete) isEvent() {}

// PresetTime fires at each of Times exactly. The schedule is a hard
// step-size ceiling: the stepper never overshoots a pending time, and a
// reached time never refires.
type PresetTime struct {
	Times  []float64
	Effect Effect
}

func (PresetTime) isEvent() {}

// CallbackSet is an ordered, immutable collection of events. It may be
// shared across concurrent runs; all per-run bookkeeping (pending preset
// times, consumed roots) lives in the solver.
type CallbackSet struct {
	events []Event
}

// New validates and aggregates events in registration order.
func New(evs ...Event) (*CallbackSet, error) {
	for _, ev := range evs {
		switch e := ev.(type) {
		case Continuous:
			if e.Condition == nil {
				return nil, ode.ErrNilCondition
			}
		case Discrete:
			if e.Condition == nil {
				return nil, ode.ErrNilCondition
			}
		case PresetTime:
			for i, t := range e.Times {
				if math.IsNaN(t) || math.IsInf(t, 0) {
					return nil, ode.ErrNonAscendingTimes
				}
				if i > 0 && t <= e.Times[i-1] {
					return nil, ode.ErrNonAscendingTimes
				}
			}
		}
	}
	return &CallbackSet{events: append([]Event(nil), evs...)}, nil
}

// Merge concatenates callback sets, preserving each set's registration
// order and the argument order between sets.
func Merge(sets ...*CallbackSet) *CallbackSet {
	merged := &CallbackSet{}
	for _, s := range sets {
		if s == nil {
			continue
		}
		merged.events = append(merged.events, s.events...)
	}
	return merged
}

func (cs *CallbackSet) Events() []Event {
	if cs == nil {
		return nil
	}
	return cs.events
}

func (cs *CallbackSet) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.events)
}
