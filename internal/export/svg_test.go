package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/odyn/internal/ode"
)

func oscillatorSolution(n int) *ode.Solution {
	sol := ode.NewSolution(n)
	for i := 0; i < n; i++ {
		t := 4 * math.Pi * float64(i) / float64(n-1)
		sol.Append(t, ode.State{-math.Sin(t), math.Cos(t)}, ode.State{-math.Cos(t), -math.Sin(t)})
	}
	return sol
}

func TestTimeSeriesSVG(t *testing.T) {
	svg := TimeSeriesSVG(oscillatorSolution(100), 1, 640, 360, "#00ff00")

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML header")
	}
	if !strings.Contains(svg, `width="640" height="360"`) {
		t.Error("dimensions not honored")
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("stroke color not honored")
	}
	if strings.Count(svg, " L") != 99 {
		t.Errorf("path has %d segments, want 99", strings.Count(svg, " L"))
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("unterminated document")
	}
}

func TestPhasePortraitSVG(t *testing.T) {
	svg := PhasePortraitSVG(oscillatorSolution(50), 1, 0, 400, 400, "#ffffff")
	if !strings.Contains(svg, "<path") {
		t.Error("no path emitted")
	}
}

func TestSVG_DegenerateInputs(t *testing.T) {
	sol := ode.NewSolution(1)
	sol.Append(0, ode.State{1}, ode.State{0})
	if TimeSeriesSVG(sol, 0, 100, 100, "#fff") != "" {
		t.Error("single sample should produce no document")
	}

	// constant series must not divide by a zero range
	flat := ode.NewSolution(2)
	flat.Append(0, ode.State{2}, ode.State{0})
	flat.Append(1, ode.State{2}, ode.State{0})
	svg := TimeSeriesSVG(flat, 0, 100, 100, "#fff")
	if !strings.Contains(svg, "<path") {
		t.Error("flat series should still render")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into coordinates")
	}
}
