// Package manifold corrects drift in conserved quantities by projecting an
// accepted state back onto the manifold defined by user-supplied residual
// constraints.
package manifold

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/odyn/internal/ode"
)

// Constraint is a vector-valued residual g(x) that must equal zero.
// Jacobian may be nil, in which case a forward finite-difference Jacobian
// is used; callers with automatic differentiation supply their own.
type Constraint struct {
	Residual func(x ode.State) []float64
	Jacobian func(x ode.State) *mat.Dense // Dim x len(x)
	Dim      int
}

// Projector performs the Newton-type correction
//
//	solve (J J^T) lambda = -g(x),  x <- x + J^T lambda
//
// which converges to the nearest state (in the Euclidean metric) on the
// constraint manifold. Non-convergence within MaxIters is recoverable: the
// caller keeps the uncorrected state and flags the solution entry.
type Projector struct {
	constraints []Constraint
	tol         float64
	maxIters    int
	every       int
	total       int // stacked residual dimension
}

// New validates the constraints and projection cadence eagerly. every is
// the projection cadence in accepted steps (1 = every step).
func New(tol float64, maxIters, every int, cs ...Constraint) (*Projector, error) {
	if tol <= 0 || maxIters <= 0 || every < 1 {
		return nil, ode.ErrBadTolerance
	}
	if len(cs) == 0 {
		return nil, ode.ErrNilResidual
	}
	total := 0
	for _, c := range cs {
		if c.Residual == nil || c.Dim < 1 {
			return nil, ode.ErrNilResidual
		}
		total += c.Dim
	}
	return &Projector{constraints: cs, tol: tol, maxIters: maxIters, every: every, total: total}, nil
}

func (p *Projector) Every() int   { return p.every }
func (p *Projector) Tol() float64 { return p.tol }

// Project returns the corrected state and whether the residual norm
// converged below the tolerance. Projecting an already-satisfying state
// returns it unchanged, so projection is idempotent up to the tolerance.
func (p *Projector) Project(x ode.State) (ode.State, bool) {
	n := len(x)
	cur := x.Clone()

	for iter := 0; iter <= p.maxIters; iter++ {
		g := p.residual(cur)
		if resNorm(g) < p.tol {
			return cur, true
		}
		if iter == p.maxIters {
			break
		}

		j := p.jacobian(cur)

		var jjt mat.Dense
		jjt.Mul(j, j.T())

		negG := mat.NewVecDense(p.total, nil)
		for i, v := range g {
			negG.SetVec(i, -v)
		}

		var lu mat.LU
		lu.Factorize(&jjt)
		var lambda mat.VecDense
		if err := lu.SolveVecTo(&lambda, false, negG); err != nil {
			return cur, false
		}

		var dx mat.VecDense
		dx.MulVec(j.T(), &lambda)
		for i := 0; i < n; i++ {
			cur[i] += dx.AtVec(i)
		}
		if !cur.IsValid() {
			return x.Clone(), false
		}
	}
	return cur, false
}

func (p *Projector) residual(x ode.State) []float64 {
	g := make([]float64, 0, p.total)
	for _, c := range p.constraints {
		g = append(g, c.Residual(x)...)
	}
	return g
}

func (p *Projector) jacobian(x ode.State) *mat.Dense {
	n := len(x)
	j := mat.NewDense(p.total, n, nil)
	row := 0
	for _, c := range p.constraints {
		if c.Jacobian != nil {
			sub := c.Jacobian(x)
			for r := 0; r < c.Dim; r++ {
				for col := 0; col < n; col++ {
					j.Set(row+r, col, sub.At(r, col))
				}
			}
		} else {
			fdJacobian(j, row, c, x)
		}
		row += c.Dim
	}
	return j
}

// fdJacobian fills rows [row, row+c.Dim) with a forward finite-difference
// approximation of the constraint's Jacobian.
func fdJacobian(j *mat.Dense, row int, c Constraint, x ode.State) {
	base := c.Residual(x)
	xp := x.Clone()
	for col := range x {
		h := math.Sqrt(2.2e-16) * math.Max(math.Abs(x[col]), 1)
		xp[col] = x[col] + h
		pert := c.Residual(xp)
		xp[col] = x[col]
		for r := 0; r < c.Dim; r++ {
			j.Set(row+r, col, (pert[r]-base[r])/h)
		}
	}
}

func resNorm(g []float64) float64 {
	sum := 0.0
	for _, v := range g {
		sum += v * v
	}
	return math.Sqrt(sum)
}
