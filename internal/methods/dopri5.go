package methods

import "github.com/san-kum/odyn/internal/ode"

// Dormand-Prince 5(4) coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// Dopri5 is the general-purpose adaptive method: an explicit Runge-Kutta
// pair whose embedded 4th-order solution supplies the per-component local
// error estimate consumed by the solver's step controller.
type Dopri5 struct{}

func NewDopri5() *Dopri5 {
	return &Dopri5{}
}

func (d *Dopri5) Name() string { return "dopri5" }
func (d *Dopri5) Order() int   { return 5 }

func (d *Dopri5) Step(prob *ode.Problem, p ode.Params, x ode.State, t, dt float64) (ode.State, error) {
	xNew, _, err := d.StepWithError(prob, p, x, t, dt)
	return xNew, err
}

func (d *Dopri5) StepWithError(prob *ode.Problem, p ode.Params, x ode.State, t, dt float64) (ode.State, ode.State, error) {
	n := len(x)

	k1 := prob.Eval(x, p, t)

	x2 := make(ode.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := prob.Eval(x2, p, t+a2*dt)

	x3 := make(ode.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := prob.Eval(x3, p, t+a3*dt)

	x4 := make(ode.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := prob.Eval(x4, p, t+a4*dt)

	x5 := make(ode.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := prob.Eval(x5, p, t+a5*dt)

	x6 := make(ode.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := prob.Eval(x6, p, t+dt)

	xNew := make(ode.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := prob.Eval(xNew, p, t+dt)

	errEst := make(ode.State, n)
	for i := 0; i < n; i++ {
		errEst[i] = dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
	}

	return xNew, errEst, nil
}
