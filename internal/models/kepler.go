package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/odyn/internal/manifold"
	"github.com/san-kum/odyn/internal/ode"
)

// Kepler is the planar two-body problem in reduced coordinates. State is
// [px, py, qx, qy]: momenta first, positions after, so the partition is
// Split = 2 and velocity equals momentum (unit reduced mass).
type Kepler struct {
	Mu float64 // gravitational parameter
}

func NewKepler() *Kepler {
	return &Kepler{Mu: 1.0}
}

// CircularOrbit returns the initial state for a circular orbit of the
// given radius.
func (k *Kepler) CircularOrbit(radius float64) ode.State {
	v := math.Sqrt(k.Mu / radius)
	return ode.State{0, v, radius, 0}
}

// EllipticOrbit returns the initial state at perihelion for an orbit of
// the given eccentricity, perihelion distance 1-e.
func (k *Kepler) EllipticOrbit(e float64) ode.State {
	return ode.State{0, math.Sqrt((1 + e) / (1 - e)), 1 - e, 0}
}

func (k *Kepler) Derive(x ode.State, p ode.Params, t float64) ode.State {
	px, py, qx, qy := x[0], x[1], x[2], x[3]
	r := math.Hypot(qx, qy)
	r3 := r * r * r
	return ode.State{-k.Mu * qx / r3, -k.Mu * qy / r3, px, py}
}

func (k *Kepler) force(q ode.State, p ode.Params, t float64) ode.State {
	r := math.Hypot(q[0], q[1])
	r3 := r * r * r
	return ode.State{-k.Mu * q[0] / r3, -k.Mu * q[1] / r3}
}

func (k *Kepler) velocity(pv ode.State, p ode.Params, t float64) ode.State {
	return ode.State{pv[0], pv[1]}
}

func (k *Kepler) Problem(x0 ode.State, t0, tf float64) (*ode.Problem, error) {
	prob, err := ode.NewProblem(k.Derive, x0, t0, tf, nil)
	if err != nil {
		return nil, err
	}
	return prob.WithPartition(2, k.force, k.velocity)
}

// Energy is the Hamiltonian |p|^2/2 - mu/|q|.
func (k *Kepler) Energy(x ode.State) float64 {
	r := math.Hypot(x[2], x[3])
	return 0.5*(x[0]*x[0]+x[1]*x[1]) - k.Mu/r
}

// AngularMomentum is the conserved quantity qx*py - qy*px.
func (k *Kepler) AngularMomentum(x ode.State) float64 {
	return x[2]*x[1] - x[3]*x[0]
}

// InvariantConstraints pins energy and angular momentum to their initial
// values for manifold projection, with an analytic Jacobian.
func (k *Kepler) InvariantConstraints(x0 ode.State) manifold.Constraint {
	e0 := k.Energy(x0)
	l0 := k.AngularMomentum(x0)
	return manifold.Constraint{
		Dim: 2,
		Residual: func(x ode.State) []float64 {
			return []float64{k.Energy(x) - e0, k.AngularMomentum(x) - l0}
		},
		Jacobian: func(x ode.State) *mat.Dense {
			px, py, qx, qy := x[0], x[1], x[2], x[3]
			r := math.Hypot(qx, qy)
			r3 := r * r * r
			return mat.NewDense(2, 4, []float64{
				px, py, k.Mu * qx / r3, k.Mu * qy / r3,
				-qy, qx, py, -px,
			})
		},
	}
}
