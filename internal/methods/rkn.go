package methods

import "github.com/san-kum/odyn/internal/ode"

// RKN4 is Nystrom's 4th-order method for second-order systems q'' = a(q).
// It exploits the structure to use three force evaluations per step where
// a general RK4 on the doubled first-order system needs four. It expects a
// partitioned problem whose momentum sub-vector is the velocity, i.e.
// dq/dt = g(p) = p; the momentum evaluator supplies the acceleration.
// Adaptivity comes from the solver's step-doubling fallback.
type RKN4 struct{}

func NewRKN4() *RKN4 {
	return &RKN4{}
}

func (r *RKN4) Name() string { return "rkn4" }
func (r *RKN4) Order() int   { return 4 }

func (r *RKN4) CheckProblem(prob *ode.Problem) error {
	if !prob.HasPartition() {
		return ode.ErrMissingPartition
	}
	if prob.Split()*2 != prob.Dim() {
		return ode.ErrBadPartition
	}
	return nil
}

func (r *RKN4) Step(prob *ode.Problem, p ode.Params, x ode.State, t, dt float64) (ode.State, error) {
	split := prob.Split()
	if split == 0 || split*2 != len(x) {
		return nil, ode.ErrMissingPartition
	}
	v := x[:split]
	q := x[split:]
	n := split
	h2 := dt * dt

	k1 := prob.EvalMomentum(q, p, t)

	qs := make(ode.State, n)
	for i := 0; i < n; i++ {
		qs[i] = q[i] + 0.5*dt*v[i] + h2/8.0*k1[i]
	}
	k2 := prob.EvalMomentum(qs, p, t+0.5*dt)

	for i := 0; i < n; i++ {
		qs[i] = q[i] + dt*v[i] + h2/2.0*k2[i]
	}
	k3 := prob.EvalMomentum(qs, p, t+dt)

	result := make(ode.State, len(x))
	for i := 0; i < n; i++ {
		result[i] = v[i] + dt/6.0*(k1[i]+4*k2[i]+k3[i])
		result[split+i] = q[i] + dt*v[i] + h2/6.0*(k1[i]+2*k2[i])
	}
	return result, nil
}
