package solver

import (
	"sync"

	"github.com/san-kum/odyn/internal/events"
	"github.com/san-kum/odyn/internal/manifold"
	"github.com/san-kum/odyn/internal/ode"
)

// Ensemble runs independent trajectories in parallel. Runs share only the
// immutable Problem and CallbackSet; each gets its own Method instance
// (methods carry scratch buffers) and its own parameter-block clone.
type Ensemble struct {
	base      *ode.Problem
	newMethod func() ode.Method
	opts      ode.Options
	cbs       *events.CallbackSet
	proj      *manifold.Projector
	numRuns   int
}

func NewEnsemble(base *ode.Problem, newMethod func() ode.Method, opts ode.Options, cbs *events.CallbackSet, proj *manifold.Projector, numRuns int) *Ensemble {
	return &Ensemble{
		base:      base,
		newMethod: newMethod,
		opts:      opts,
		cbs:       cbs,
		proj:      proj,
		numRuns:   numRuns,
	}
}

// Run executes the ensemble. vary, if non-nil, derives run idx's problem
// from the base (perturbed initial conditions, parameter sweeps); a nil
// vary repeats the base problem, which is only useful for benchmarking.
func (e *Ensemble) Run(vary func(idx int, base *ode.Problem) (*ode.Problem, error)) ([]*ode.Solution, error) {
	solutions := make([]*ode.Solution, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			prob := e.base
			if vary != nil {
				var err error
				prob, err = vary(idx, e.base)
				if err != nil {
					errs[idx] = err
					return
				}
			}
			solutions[idx], errs[idx] = Solve(prob, e.newMethod(), e.opts, e.cbs, e.proj)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return solutions, nil
}
