// Package metrics evaluates scalar diagnostics over a finished trajectory:
// drift of conserved quantities, component amplitude, bound violations.
package metrics

import (
	"math"

	"github.com/san-kum/odyn/internal/ode"
)

// Metric observes each accepted sample of a solution in time order.
type Metric interface {
	Name() string
	Observe(x ode.State, t float64)
	Value() float64
}

// Collect replays the solution through the metrics and returns their final
// values keyed by name.
func Collect(sol *ode.Solution, ms ...Metric) map[string]float64 {
	for i := range sol.States {
		for _, m := range ms {
			m.Observe(sol.States[i], sol.Times[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// InvariantDrift tracks the worst deviation of a conserved quantity from
// its value at the first observed sample.
type InvariantDrift struct {
	name   string
	f      func(x ode.State) float64
	ref    float64
	seeded bool
	max    float64
}

func NewInvariantDrift(name string, f func(x ode.State) float64) *InvariantDrift {
	return &InvariantDrift{name: name, f: f}
}

func (d *InvariantDrift) Name() string { return d.name }

func (d *InvariantDrift) Observe(x ode.State, t float64) {
	v := d.f(x)
	if !d.seeded {
		d.ref = v
		d.seeded = true
		return
	}
	if dev := math.Abs(v - d.ref); dev > d.max {
		d.max = dev
	}
}

func (d *InvariantDrift) Value() float64 { return d.max }

// Amplitude tracks the largest magnitude reached by one state component.
type Amplitude struct {
	comp int
	max  float64
}

func NewAmplitude(comp int) *Amplitude { return &Amplitude{comp: comp} }

func (a *Amplitude) Name() string { return "amplitude" }

func (a *Amplitude) Observe(x ode.State, t float64) {
	if v := math.Abs(x[a.comp]); v > a.max {
		a.max = v
	}
}

func (a *Amplitude) Value() float64 { return a.max }

// Stability reports the fraction of samples with every component inside
// the threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x ode.State, t float64) {
	s.samples++
	for _, v := range x {
		if math.Abs(v) > s.threshold {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}
