package models

import (
	"github.com/san-kum/odyn/internal/events"
	"github.com/san-kum/odyn/internal/ode"
)

// LIF is the leaky integrate-and-fire neuron: linear decay toward
// VRest + input, a continuous threshold-crossing event that resets the
// membrane potential, and scheduled input-current bumps. The parameter
// block carries "input" (additive drive, mutated by the preset events) and
// "spikes" (incremented by the reset effect).
type LIF struct {
	Tau       float64
	VRest     float64
	VReset    float64
	Threshold float64
	Bump      float64   // input increment applied at each bump time
	BumpTimes []float64 // ascending
}

func NewLIF() *LIF {
	return &LIF{
		Tau:       1.0,
		VRest:     0.0,
		VReset:    0.0,
		Threshold: 1.0,
		Bump:      1.5,
		BumpTimes: []float64{2, 15},
	}
}

func (l *LIF) Derive(x ode.State, p ode.Params, t float64) ode.State {
	return ode.State{(-(x[0] - l.VRest) + p["input"]) / l.Tau}
}

func (l *LIF) Problem(t0, tf float64) (*ode.Problem, error) {
	return ode.NewProblem(l.Derive, ode.State{l.VRest}, t0, tf, ode.Params{"input": 0})
}

// Callbacks wires the threshold reset and the input bumps. The reset is a
// continuous event so the spike time is located to the solver's time
// tolerance; the bumps are preset times and land bit-exactly.
func (l *LIF) Callbacks() (*events.CallbackSet, error) {
	return events.New(
		events.Continuous{
			Condition: func(x ode.State, t float64) float64 {
				return x[0] - l.Threshold
			},
			Effect: func(x ode.State, p ode.Params, t float64) {
				x[0] = l.VReset
				p["spikes"]++
			},
		},
		events.PresetTime{
			Times: l.BumpTimes,
			Effect: func(x ode.State, p ode.Params, t float64) {
				p["input"] += l.Bump
			},
		},
	)
}
