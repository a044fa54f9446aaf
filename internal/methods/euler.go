package methods

import "github.com/san-kum/odyn/internal/ode"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Order() int   { return 1 }

func (e *Euler) Step(prob *ode.Problem, p ode.Params, x ode.State, t, dt float64) (ode.State, error) {
	dx := prob.Eval(x, p, t)
	result := make(ode.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
