package ode

import (
	"errors"
	"math"
	"testing"
)

// cubic whose Hermite interpolant is exact
func cubic(t float64) (x, dx float64) {
	return t*t*t - 2*t, 3*t*t - 2
}

func buildCubicSolution(times []float64) *Solution {
	sol := NewSolution(len(times))
	for _, tt := range times {
		x, dx := cubic(tt)
		sol.Append(tt, State{x}, State{dx})
	}
	return sol
}

func TestSolution_AtReproducesCubic(t *testing.T) {
	sol := buildCubicSolution([]float64{0, 0.5, 1.3, 2.0})

	for _, q := range []float64{0, 0.25, 0.5, 0.9, 1.3, 1.7, 2.0} {
		got, err := sol.At(q)
		if err != nil {
			t.Fatalf("At(%v) failed: %v", q, err)
		}
		want, _ := cubic(q)
		if math.Abs(got[0]-want) > 1e-12 {
			t.Errorf("At(%v) = %v, want %v", q, got[0], want)
		}
	}
}

func TestSolution_AtGridPointsExact(t *testing.T) {
	sol := buildCubicSolution([]float64{0, 1, 2})
	for i, tt := range sol.Times {
		got, err := sol.At(tt)
		if err != nil {
			t.Fatalf("At(%v) failed: %v", tt, err)
		}
		if got[0] != sol.States[i][0] {
			t.Errorf("grid point %v not returned exactly", tt)
		}
	}
}

func TestSolution_AtOutOfSpan(t *testing.T) {
	sol := buildCubicSolution([]float64{0, 1})
	for _, q := range []float64{-0.1, 1.1} {
		if _, err := sol.At(q); !errors.Is(err, ErrOutOfSpan) {
			t.Errorf("At(%v) error = %v, want ErrOutOfSpan", q, err)
		}
	}
}

func TestSolution_AtBackward(t *testing.T) {
	sol := buildCubicSolution([]float64{2, 1.2, 0.5, 0})

	got, err := sol.At(1.0)
	if err != nil {
		t.Fatalf("At(1.0) failed: %v", err)
	}
	want, _ := cubic(1.0)
	if math.Abs(got[0]-want) > 1e-12 {
		t.Errorf("backward At(1.0) = %v, want %v", got[0], want)
	}
}

func TestSolution_SingleSample(t *testing.T) {
	sol := NewSolution(1)
	sol.Append(3.0, State{1, 2}, State{0, 0})

	got, err := sol.At(3.0)
	if err != nil {
		t.Fatalf("At(t0) failed: %v", err)
	}
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("At(t0) = %v", got)
	}
	if _, err := sol.At(3.5); !errors.Is(err, ErrOutOfSpan) {
		t.Error("query past a single sample should fail")
	}
}

func TestSolution_AppendClones(t *testing.T) {
	sol := NewSolution(4)
	x := State{1.0}
	sol.Append(0, x, State{0})
	x[0] = 99
	if sol.States[0][0] == 99 {
		t.Error("Append aliased the state")
	}
}

func TestSolution_Components(t *testing.T) {
	sol := NewSolution(4)
	sol.Append(0, State{1, 10}, State{0, 0})
	sol.Append(1, State{2, 20}, State{0, 0})

	series := sol.Components(1, 0)
	if series[0][0] != 10 || series[0][1] != 20 {
		t.Errorf("component 1 series = %v", series[0])
	}
	if series[1][0] != 1 || series[1][1] != 2 {
		t.Errorf("component 0 series = %v", series[1])
	}
}

func TestSolution_Warn(t *testing.T) {
	sol := NewSolution(2)
	sol.Append(0, State{1}, State{0})
	sol.Append(1, State{2}, State{0})
	sol.Warn(ProjectionFailure, 1.0, "did not converge")

	if len(sol.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(sol.Warnings))
	}
	w := sol.Warnings[0]
	if w.Entry != 1 || w.Kind != ProjectionFailure {
		t.Errorf("warning = %+v", w)
	}
}

func TestStatus_Fatal(t *testing.T) {
	for _, s := range []Status{DtTooSmall, MaxRetriesExceeded, Unstable} {
		if !s.Fatal() {
			t.Errorf("%v should be fatal", s)
		}
	}
	for _, s := range []Status{Success, Terminated} {
		if s.Fatal() {
			t.Errorf("%v should not be fatal", s)
		}
	}
}
