package methods

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/odyn/internal/ode"
)

// harmonic oscillator x'' = -x with state [v, x]
func oscillator() *ode.Problem {
	full := func(x ode.State, p ode.Params, t float64) ode.State {
		return ode.State{-x[1], x[0]}
	}
	prob, _ := ode.NewProblem(full, ode.State{0, 1}, 0, 10, nil)
	prob, _ = prob.WithPartition(1,
		func(q ode.State, p ode.Params, t float64) ode.State { return ode.State{-q[0]} },
		func(pv ode.State, p ode.Params, t float64) ode.State { return ode.State{pv[0]} },
	)
	return prob
}

func energy(x ode.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func integrateFixed(t *testing.T, m ode.Method, prob *ode.Problem, dt float64, steps int) ode.State {
	t.Helper()
	x := prob.X0()
	for i := 0; i < steps; i++ {
		next, err := m.Step(prob, prob.Params(), x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("%s step failed: %v", m.Name(), err)
		}
		x = next
	}
	return x
}

func TestRK4_Accuracy(t *testing.T) {
	prob := oscillator()
	dt := 0.01
	steps := 100
	x := integrateFixed(t, NewRK4(), prob, dt, steps)

	tEnd := float64(steps) * dt
	if math.Abs(x[1]-math.Cos(tEnd)) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[1], math.Cos(tEnd))
	}
	if math.Abs(x[0]-(-math.Sin(tEnd))) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[0], -math.Sin(tEnd))
	}
}

func TestEuler_FirstOrder(t *testing.T) {
	prob := oscillator()
	x := integrateFixed(t, NewEuler(), prob, 0.001, 1000)
	if math.Abs(x[1]-math.Cos(1.0)) > 1e-2 {
		t.Errorf("euler error too large: got %.4f, expected %.4f", x[1], math.Cos(1.0))
	}
}

func TestDopri5_Accuracy(t *testing.T) {
	prob := oscillator()
	x := integrateFixed(t, NewDopri5(), prob, 0.1, 100)

	tEnd := 10.0
	if math.Abs(x[1]-math.Cos(tEnd)) > 1e-6 {
		t.Errorf("dopri5 position error: got %.8f, expected %.8f", x[1], math.Cos(tEnd))
	}
}

func TestDopri5_ErrorEstimate(t *testing.T) {
	prob := oscillator()
	d := NewDopri5()

	xNew, errEst, err := d.StepWithError(prob, nil, prob.X0(), 0, 0.1)
	if err != nil {
		t.Fatalf("StepWithError failed: %v", err)
	}
	if !xNew.IsValid() {
		t.Error("invalid candidate state")
	}
	if errEst.Norm() == 0 {
		t.Error("error estimate is identically zero")
	}
	if errEst.Norm() > 1e-6 {
		t.Errorf("error estimate implausibly large for dt=0.1: %e", errEst.Norm())
	}
}

func TestLeapfrog_EnergyBounded(t *testing.T) {
	prob := oscillator()
	m := NewLeapfrog()
	if !m.FixedStepOnly() {
		t.Fatal("leapfrog must be fixed-step only")
	}

	dt := 0.01
	x := prob.X0()
	e0 := energy(x)
	maxDrift := 0.0
	for i := 0; i < 100_000; i++ {
		next, err := m.Step(prob, nil, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		x = next
		if drift := math.Abs(energy(x) - e0); drift > maxDrift {
			maxDrift = drift
		}
	}
	// symplectic: oscillating error, no secular growth
	if maxDrift > 1e-4 {
		t.Errorf("energy drift too large over 1e5 steps: %e", maxDrift)
	}
}

func TestLeapfrog_RequiresPartition(t *testing.T) {
	prob, _ := ode.NewProblem(func(x ode.State, p ode.Params, t float64) ode.State {
		return ode.State{-x[0]}
	}, ode.State{1}, 0, 1, nil)

	if err := NewLeapfrog().CheckProblem(prob); err == nil {
		t.Error("expected ErrMissingPartition")
	}
}

func TestRKN4_Accuracy(t *testing.T) {
	prob := oscillator()
	x := integrateFixed(t, NewRKN4(), prob, 0.01, 1000)

	tEnd := 10.0
	if math.Abs(x[1]-math.Cos(tEnd)) > 1e-6 {
		t.Errorf("rkn4 position error: got %.8f, expected %.8f", x[1], math.Cos(tEnd))
	}
	if math.Abs(x[0]-(-math.Sin(tEnd))) > 1e-6 {
		t.Errorf("rkn4 velocity error: got %.8f, expected %.8f", x[0], -math.Sin(tEnd))
	}
}

func TestRKN4_RequiresEvenPartition(t *testing.T) {
	full := func(x ode.State, p ode.Params, t float64) ode.State {
		return ode.State{-x[1], x[0], 0}
	}
	prob, _ := ode.NewProblem(full, ode.State{0, 1, 0}, 0, 1, nil)
	prob, _ = prob.WithPartition(1,
		func(q ode.State, p ode.Params, t float64) ode.State { return ode.State{-q[0]} },
		func(pv ode.State, p ode.Params, t float64) ode.State { return ode.State{pv[0]} },
	)
	if err := NewRKN4().CheckProblem(prob); err == nil {
		t.Error("expected ErrBadPartition for split*2 != dim")
	}
}

// diagOp is a diagonal linear operator for IMEX tests.
type diagOp struct {
	d []float64
}

func (o *diagOp) Dim() int { return len(o.d) }

func (o *diagOp) Apply(x ode.State) ode.State {
	out := make(ode.State, len(o.d))
	for i := range o.d {
		out[i] = o.d[i] * x[i]
	}
	return out
}

func (o *diagOp) Dense() *mat.Dense {
	n := len(o.d)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, o.d[i])
	}
	return m
}

func zeroRemainder(x ode.State, p ode.Params, t float64) ode.State {
	return make(ode.State, len(x))
}

func stiffDecay(lambda float64) *ode.Problem {
	l := &diagOp{d: []float64{-lambda}}
	full := func(x ode.State, p ode.Params, t float64) ode.State {
		return ode.State{-lambda * x[0]}
	}
	prob, _ := ode.NewProblem(full, ode.State{1}, 0, 1, nil)
	prob, _ = prob.WithIMEXSplit(l, zeroRemainder)
	return prob
}

func TestIMEXEuler_MatchesClosedForm(t *testing.T) {
	// with N = 0 the update is exactly x/(1 + lambda*dt) per step
	lambda := 50.0
	dt := 0.1
	prob := stiffDecay(lambda)

	x := integrateFixed(t, NewIMEXEuler(), prob, dt, 10)
	want := math.Pow(1+lambda*dt, -10)
	if math.Abs(x[0]-want) > 1e-12 {
		t.Errorf("imex-euler: got %.15f, want %.15f", x[0], want)
	}
}

func TestIMEXEuler_StableWhereExplicitBlowsUp(t *testing.T) {
	// lambda*dt = 5 is far outside the explicit stability region
	prob := stiffDecay(50.0)
	x := integrateFixed(t, NewIMEXEuler(), prob, 0.1, 10)
	if math.Abs(x[0]) > 1 {
		t.Errorf("imex-euler unstable: %v", x[0])
	}

	xe := integrateFixed(t, NewEuler(), prob, 0.1, 10)
	if math.Abs(xe[0]) < 100 {
		t.Errorf("explicit euler unexpectedly stable: %v", xe[0])
	}
}

func TestCNAB2_SecondOrder(t *testing.T) {
	lambda := 2.0
	prob := stiffDecay(lambda)
	want := math.Exp(-lambda)

	coarse := integrateFixed(t, NewCNAB2(), prob, 0.05, 20)
	fine := integrateFixed(t, NewCNAB2(), prob, 0.025, 40)

	errCoarse := math.Abs(coarse[0] - want)
	errFine := math.Abs(fine[0] - want)

	// halving dt should cut the error by about 4x
	ratio := errCoarse / errFine
	if ratio < 3.0 {
		t.Errorf("cnab2 convergence ratio %.2f, want ~4", ratio)
	}
}

func TestIMEX_RequireOperator(t *testing.T) {
	prob, _ := ode.NewProblem(func(x ode.State, p ode.Params, t float64) ode.State {
		return ode.State{-x[0]}
	}, ode.State{1}, 0, 1, nil)

	if err := NewIMEXEuler().CheckProblem(prob); err == nil {
		t.Error("imex-euler accepted a problem without an operator")
	}
	if err := NewCNAB2().CheckProblem(prob); err == nil {
		t.Error("cnab2 accepted a problem without an operator")
	}
}

func BenchmarkRK4(b *testing.B) {
	prob := oscillator()
	m := NewRK4()
	x := prob.X0()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = m.Step(prob, nil, x, 0, 0.01)
	}
}

func BenchmarkDopri5(b *testing.B) {
	prob := oscillator()
	m := NewDopri5()
	x := prob.X0()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = m.Step(prob, nil, x, 0, 0.01)
	}
}

func BenchmarkLeapfrog(b *testing.B) {
	prob := oscillator()
	m := NewLeapfrog()
	x := prob.X0()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = m.Step(prob, nil, x, 0, 0.01)
	}
}
