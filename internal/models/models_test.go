package models

import (
	"math"
	"testing"

	"github.com/san-kum/odyn/internal/ode"
)

func TestOscillator_Derive(t *testing.T) {
	o := NewOscillator()
	dx := o.Derive(ode.State{0, 1}, nil, 0)
	if dx[0] != -1 || dx[1] != 0 {
		t.Errorf("Derive = %v, want [-1 0]", dx)
	}
	if e := o.Energy(ode.State{0, 1}); e != 0.5 {
		t.Errorf("Energy = %v, want 0.5", e)
	}
}

func TestKepler_OrbitInvariants(t *testing.T) {
	k := NewKepler()

	// circular orbit at radius 1: energy -mu/2, angular momentum sqrt(mu*r)
	x0 := k.CircularOrbit(1)
	if math.Abs(k.Energy(x0)+0.5) > 1e-12 {
		t.Errorf("circular energy = %v, want -0.5", k.Energy(x0))
	}
	if math.Abs(k.AngularMomentum(x0)-1) > 1e-12 {
		t.Errorf("circular angular momentum = %v, want 1", k.AngularMomentum(x0))
	}

	// elliptic orbit: energy -mu/(2a) with a = 1 for this parametrization
	e := 0.6
	xe := k.EllipticOrbit(e)
	if math.Abs(k.Energy(xe)+0.5) > 1e-12 {
		t.Errorf("elliptic energy = %v, want -0.5", k.Energy(xe))
	}

	c := k.InvariantConstraints(xe)
	g := c.Residual(xe)
	for i, v := range g {
		if v != 0 {
			t.Errorf("residual[%d] = %v at the anchor state", i, v)
		}
	}
}

func TestHeat_SineModeDecay(t *testing.T) {
	h := NewHeat(16, 1.0, 0.1)

	x0 := h.SineMode(1)
	if len(x0) != 16 {
		t.Fatalf("len = %d", len(x0))
	}
	// the mode peaks mid-domain and vanishes toward the boundaries
	if x0[7] < x0[0] || x0[8] < x0[15] {
		t.Error("sine mode shape wrong")
	}

	want := 0.1 * math.Pi * math.Pi
	if math.Abs(h.DecayRate(1)-want) > 1e-12 {
		t.Errorf("DecayRate(1) = %v, want %v", h.DecayRate(1), want)
	}
}

func TestLaplacian1D_MatchesDense(t *testing.T) {
	l := NewLaplacian1D(5, 2.0, 0.5)
	x := ode.State{1, -1, 2, 0, 3}

	sparse := l.Apply(x)
	d := l.Dense()
	for i := 0; i < 5; i++ {
		dense := 0.0
		for j := 0; j < 5; j++ {
			dense += d.At(i, j) * x[j]
		}
		if math.Abs(sparse[i]-dense) > 1e-12 {
			t.Errorf("row %d: Apply = %v, Dense = %v", i, sparse[i], dense)
		}
	}
}

func TestLIF_Derive(t *testing.T) {
	l := NewLIF()
	dx := l.Derive(ode.State{0.5}, ode.Params{"input": 1.5}, 0)
	if dx[0] != 1.0 {
		t.Errorf("Derive = %v, want 1.0", dx[0])
	}

	cbs, err := l.Callbacks()
	if err != nil {
		t.Fatal(err)
	}
	if cbs.Len() != 2 {
		t.Errorf("Callbacks Len = %d, want 2", cbs.Len())
	}
}
