package methods

import "github.com/san-kum/odyn/internal/ode"

type RK4 struct {
	k1, k2, k3, k4 ode.State
	scratch        ode.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }
func (r *RK4) Order() int   { return 4 }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(ode.State, n)
		r.k2 = make(ode.State, n)
		r.k3 = make(ode.State, n)
		r.k4 = make(ode.State, n)
		r.scratch = make(ode.State, n)
	}
}

func (r *RK4) Step(prob *ode.Problem, p ode.Params, x ode.State, t, dt float64) (ode.State, error) {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, prob.Eval(x, p, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, prob.Eval(r.scratch, p, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, prob.Eval(r.scratch, p, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, prob.Eval(r.scratch, p, t+dt))

	result := make(ode.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result, nil
}
