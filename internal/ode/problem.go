package ode

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LinearOperator is the stiff half of an IMEX split, supplied by the
// caller as an opaque operator. Dense materializes it so the method can
// factorize shifted systems (I - dt*L).
type LinearOperator interface {
	Dim() int
	Apply(x State) State
	Dense() *mat.Dense
}

// Problem is an immutable description of an initial-value problem. Build
// one with NewProblem and refine it with WithPartition or WithIMEXSplit;
// every constructor validates eagerly so a misconfigured problem is never
// discovered mid-run.
type Problem struct {
	f          Func
	fMomentum  Func // dp/dt = f(q); receives the position sub-vector
	fPosition  Func // dq/dt = g(p); receives the momentum sub-vector
	linear     LinearOperator
	fRemainder Func // nonlinear remainder N of an IMEX split
	x0         State
	t0, tf     float64
	params     Params
	split      int // momentum sub-vector length; 0 = unpartitioned
}

// NewProblem bundles a full right-hand side with initial state, span and
// parameter block. A span with tf == t0 is legal and yields a trajectory
// containing only the initial state; tf < t0 requests backward integration.
func NewProblem(f Func, x0 State, t0, tf float64, params Params) (*Problem, error) {
	if f == nil {
		return nil, ErrNoRHS
	}
	if len(x0) == 0 {
		return nil, ErrEmptyState
	}
	if !x0.IsValid() {
		return nil, configErrf(ErrEmptyState, "initial state contains NaN/Inf")
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsNaN(tf) || math.IsInf(tf, 0) {
		return nil, configErrf(ErrBadSpan, "[%v, %v]", t0, tf)
	}
	if params == nil {
		params = Params{}
	}
	return &Problem{f: f, x0: x0.Clone(), t0: t0, tf: tf, params: params}, nil
}

// WithPartition returns a copy of the problem carrying a momentum/position
// split and the two partitioned evaluators required by symplectic and
// Nystrom methods. split is the momentum sub-vector length; the partition
// is fixed for the lifetime of a trajectory.
func (p *Problem) WithPartition(split int, fMomentum, fPosition Func) (*Problem, error) {
	if split < 1 || split >= len(p.x0) {
		return nil, configErrf(ErrBadPartition, "split %d for dimension %d", split, len(p.x0))
	}
	if fMomentum == nil || fPosition == nil {
		return nil, configErrf(ErrBadPartition, "both partitioned evaluators are required")
	}
	q := *p
	q.split = split
	q.fMomentum = fMomentum
	q.fPosition = fPosition
	return &q, nil
}

// WithIMEXSplit returns a copy of the problem carrying the linear operator
// L and the nonlinear remainder N of an implicit-explicit split.
func (p *Problem) WithIMEXSplit(l LinearOperator, remainder Func) (*Problem, error) {
	if l == nil {
		return nil, ErrMissingOperator
	}
	if l.Dim() != len(p.x0) {
		return nil, configErrf(ErrDimensionMismatch, "operator %d vs state %d", l.Dim(), len(p.x0))
	}
	if remainder == nil {
		return nil, configErrf(ErrMissingOperator, "nonlinear remainder is required")
	}
	q := *p
	q.linear = l
	q.fRemainder = remainder
	return &q, nil
}

func (p *Problem) Dim() int { return len(p.x0) }

// X0 returns a copy of the initial state.
func (p *Problem) X0() State { return p.x0.Clone() }

func (p *Problem) Span() (t0, tf float64) { return p.t0, p.tf }

// Direction is +1 for forward spans, -1 for backward, 0 when t0 == tf.
func (p *Problem) Direction() float64 {
	switch {
	case p.tf > p.t0:
		return 1
	case p.tf < p.t0:
		return -1
	default:
		return 0
	}
}

// Params returns the problem's initial parameter block. The solver clones
// it per run, so shared Problems never alias mutable state.
func (p *Problem) Params() Params { return p.params }

func (p *Problem) Split() int          { return p.split }
func (p *Problem) HasPartition() bool  { return p.split > 0 }
func (p *Problem) HasIMEXSplit() bool  { return p.linear != nil }
func (p *Problem) Operator() LinearOperator { return p.linear }

// Eval evaluates the full right-hand side.
func (p *Problem) Eval(x State, params Params, t float64) State {
	return p.f(x, params, t)
}

// EvalMomentum evaluates dp/dt = f(q) on the position sub-vector.
func (p *Problem) EvalMomentum(q State, params Params, t float64) State {
	return p.fMomentum(q, params, t)
}

// EvalPosition evaluates dq/dt = g(p) on the momentum sub-vector.
func (p *Problem) EvalPosition(pv State, params Params, t float64) State {
	return p.fPosition(pv, params, t)
}

// EvalRemainder evaluates the nonlinear remainder of an IMEX split.
func (p *Problem) EvalRemainder(x State, params Params, t float64) State {
	return p.fRemainder(x, params, t)
}
