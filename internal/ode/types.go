package ode

import "math"

// State is the phase-space vector. For partitioned problems the first
// Split entries are momenta and the remainder positions.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + other[i]
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] - other[i]
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// Params is the run's mutable parameter block. Only event effects write to
// it, and only the solver hands it to them; everything else reads.
type Params map[string]float64

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Func evaluates a right-hand side: dx/dt = f(x, params, t).
type Func func(x State, p Params, t float64) State

// Method is the common stepping interface. Step produces the candidate
// state at t+dt from x at t. dt is signed by the integration direction.
type Method interface {
	Name() string
	Order() int
	Step(prob *Problem, p Params, x State, t, dt float64) (State, error)
}

// ErrorEstimater is implemented by adaptive methods with an embedded
// lower-order solution; the second return is the per-component local
// error estimate.
type ErrorEstimater interface {
	Method
	StepWithError(prob *Problem, p Params, x State, t, dt float64) (State, State, error)
}

// FixedOnly marks methods whose correctness depends on a constant step
// size (symplectic composition, multistep history). The solver disables
// the adaptive branch for these.
type FixedOnly interface {
	FixedStepOnly() bool
}

// ForwardOnly marks methods that reject descending time spans.
type ForwardOnly interface {
	ForwardOnly() bool
}

// ProblemChecker lets a method validate its problem prerequisites before
// any stepping begins.
type ProblemChecker interface {
	CheckProblem(prob *Problem) error
}

// Options controls the adaptive loop.
type Options struct {
	InitialDt    float64
	MinDt        float64
	MaxDt        float64
	AbsTol       float64
	RelTol       float64
	MaxRetries   int // step rejections allowed per accepted step
	MaxSteps     int
	EventTimeTol float64 // bracket width for continuous-event roots
	MaxRootIters int
	ProjectEvery int // manifold projection cadence; 0 disables
}

func DefaultOptions() Options {
	return Options{
		InitialDt:    1e-2,
		MinDt:        1e-12,
		MaxDt:        1.0,
		AbsTol:       1e-8,
		RelTol:       1e-6,
		MaxRetries:   20,
		MaxSteps:     10_000_000,
		EventTimeTol: 1e-10,
		MaxRootIters: 100,
		ProjectEvery: 1,
	}
}

// Stats accumulates per-run counters.
type Stats struct {
	Steps    int // accepted steps
	Rejected int
	LastDt   float64
}
