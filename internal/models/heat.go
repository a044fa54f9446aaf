package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/odyn/internal/ode"
)

// Laplacian1D is the standard second-difference operator with zero
// Dirichlet boundaries, scaled by diffusivity/dx^2. It is the stiff half
// of the heat equation's IMEX split.
type Laplacian1D struct {
	n    int
	coef float64
}

func NewLaplacian1D(n int, diffusivity, dx float64) *Laplacian1D {
	return &Laplacian1D{n: n, coef: diffusivity / (dx * dx)}
}

func (l *Laplacian1D) Dim() int { return l.n }

func (l *Laplacian1D) Apply(x ode.State) ode.State {
	out := make(ode.State, l.n)
	for i := 0; i < l.n; i++ {
		v := -2 * x[i]
		if i > 0 {
			v += x[i-1]
		}
		if i < l.n-1 {
			v += x[i+1]
		}
		out[i] = l.coef * v
	}
	return out
}

func (l *Laplacian1D) Dense() *mat.Dense {
	d := mat.NewDense(l.n, l.n, nil)
	for i := 0; i < l.n; i++ {
		d.Set(i, i, -2*l.coef)
		if i > 0 {
			d.Set(i, i-1, l.coef)
		}
		if i < l.n-1 {
			d.Set(i, i+1, l.coef)
		}
	}
	return d
}

// Heat is 1-D diffusion u_t = k*u_xx + reaction(u) on [0, L] with zero
// boundaries, discretized by the caller into n interior points. The
// diffusion term goes to the implicit half; the (non-stiff) reaction stays
// explicit. Params key "reaction" sets the linear reaction rate.
type Heat struct {
	N           int
	Length      float64
	Diffusivity float64
}

func NewHeat(n int, length, diffusivity float64) *Heat {
	return &Heat{N: n, Length: length, Diffusivity: diffusivity}
}

func (h *Heat) dx() float64 { return h.Length / float64(h.N+1) }

// SineMode returns the m-th sine eigenmode as an initial condition; under
// pure diffusion it decays as exp(-k*(m*pi/L)^2 * t), which makes accuracy
// checks analytic.
func (h *Heat) SineMode(m int) ode.State {
	x0 := make(ode.State, h.N)
	for i := 0; i < h.N; i++ {
		xi := float64(i+1) * h.dx()
		x0[i] = math.Sin(float64(m) * math.Pi * xi / h.Length)
	}
	return x0
}

// DecayRate is the continuous decay rate of the m-th mode.
func (h *Heat) DecayRate(m int) float64 {
	w := float64(m) * math.Pi / h.Length
	return h.Diffusivity * w * w
}

func (h *Heat) reaction(x ode.State, p ode.Params, t float64) ode.State {
	rate := p["reaction"]
	out := make(ode.State, len(x))
	for i, v := range x {
		out[i] = rate * v
	}
	return out
}

func (h *Heat) Problem(x0 ode.State, t0, tf float64, params ode.Params) (*ode.Problem, error) {
	l := NewLaplacian1D(h.N, h.Diffusivity, h.dx())
	full := func(x ode.State, p ode.Params, t float64) ode.State {
		out := l.Apply(x)
		r := h.reaction(x, p, t)
		for i := range out {
			out[i] += r[i]
		}
		return out
	}
	prob, err := ode.NewProblem(full, x0, t0, tf, params)
	if err != nil {
		return nil, err
	}
	return prob.WithIMEXSplit(l, h.reaction)
}
