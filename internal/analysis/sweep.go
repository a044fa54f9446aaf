package analysis

import (
	"fmt"

	"github.com/san-kum/odyn/internal/ode"
	"github.com/san-kum/odyn/internal/solver"
)

// SweepPoint is the long-run behavior of one state component at one
// parameter value: the local maxima recorded after the transient, or the
// final sample when the trajectory settles monotonically.
type SweepPoint struct {
	Value     float64
	Attractor []float64
}

// ParamSweep integrates build(v) for steps evenly spaced parameter values
// in [lo, hi], all runs in parallel, and distills each trajectory into a
// SweepPoint. A fixed point shows up as a single attractor value, a limit
// cycle as a repeating band, chaos as a scatter.
func ParamSweep(
	build func(value float64) (*ode.Problem, error),
	newMethod func() ode.Method,
	opts ode.Options,
	lo, hi float64,
	steps, comp int,
	transient float64,
) ([]SweepPoint, error) {
	if steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}

	values := make([]float64, steps)
	for i := range values {
		if steps == 1 {
			values[i] = lo
		} else {
			values[i] = lo + (hi-lo)*float64(i)/float64(steps-1)
		}
	}

	base, err := build(values[0])
	if err != nil {
		return nil, err
	}
	ens := solver.NewEnsemble(base, newMethod, opts, nil, nil, steps)
	sols, err := ens.Run(func(idx int, _ *ode.Problem) (*ode.Problem, error) {
		return build(values[idx])
	})
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, steps)
	for i, sol := range sols {
		series := sol.Components(comp)[0]
		after := sol.Times[0] + transient
		points[i] = SweepPoint{
			Value:     values[i],
			Attractor: localMaxima(sol.Times, series, after),
		}
	}
	return points, nil
}

// localMaxima picks interior samples after the cutoff that top both
// neighbors; a trajectory without any falls back to its final sample.
func localMaxima(times, series []float64, after float64) []float64 {
	var out []float64
	for i := 1; i < len(series)-1; i++ {
		if times[i] < after {
			continue
		}
		if series[i] > series[i-1] && series[i] >= series[i+1] {
			out = append(out, series[i])
		}
	}
	if len(out) == 0 && len(series) > 0 {
		out = []float64{series[len(series)-1]}
	}
	return out
}
