package models

import "github.com/san-kum/odyn/internal/ode"

// Oscillator is the harmonic oscillator x'' = -omega^2 x with state
// [v, x] (velocity first, matching the momentum/position convention).
type Oscillator struct {
	Omega float64
}

func NewOscillator() *Oscillator {
	return &Oscillator{Omega: 1.0}
}

func (o *Oscillator) Derive(x ode.State, p ode.Params, t float64) ode.State {
	return ode.State{-o.Omega * o.Omega * x[1], x[0]}
}

// Problem builds a partitioned problem so that symplectic and Nystrom
// methods can integrate it; general methods use the full right-hand side.
func (o *Oscillator) Problem(x0 ode.State, t0, tf float64) (*ode.Problem, error) {
	prob, err := ode.NewProblem(o.Derive, x0, t0, tf, nil)
	if err != nil {
		return nil, err
	}
	return prob.WithPartition(1,
		func(q ode.State, p ode.Params, t float64) ode.State {
			return ode.State{-o.Omega * o.Omega * q[0]}
		},
		func(pv ode.State, p ode.Params, t float64) ode.State {
			return ode.State{pv[0]}
		},
	)
}

func (o *Oscillator) Energy(x ode.State) float64 {
	return 0.5 * (x[0]*x[0] + o.Omega*o.Omega*x[1]*x[1])
}

// Decay is the one-dimensional linear decay dv/dt = -rate*v.
type Decay struct {
	Rate float64
}

func NewDecay(rate float64) *Decay {
	return &Decay{Rate: rate}
}

func (d *Decay) Derive(x ode.State, p ode.Params, t float64) ode.State {
	return ode.State{-d.Rate * x[0]}
}

func (d *Decay) Problem(x0 float64, t0, tf float64) (*ode.Problem, error) {
	return ode.NewProblem(d.Derive, ode.State{x0}, t0, tf, nil)
}
