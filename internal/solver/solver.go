// Package solver drives the adaptive time-marching loop: it proposes
// steps, asks the method plugin for candidates, accepts or rejects on the
// weighted error norm, consults the event system over each trial interval
// and applies the manifold projection after acceptance.
package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/odyn/internal/events"
	"github.com/san-kum/odyn/internal/manifold"
	"github.com/san-kum/odyn/internal/ode"
)

// Solve integrates the problem over its span. The returned error is non-nil
// only for configuration problems, rejected before any stepping; numerical
// failures terminate the run and are encoded in Solution.Status together
// with the partial trajectory, so ensemble callers can inspect many runs
// without control-flow disruption.
func Solve(prob *ode.Problem, method ode.Method, opts ode.Options, cbs *events.CallbackSet, proj *manifold.Projector) (*ode.Solution, error) {
	if err := validate(prob, method, opts); err != nil {
		return nil, err
	}

	r := &run{
		prob:   prob,
		method: method,
		opts:   opts,
		proj:   proj,
		evs:    cbs.Events(),
		sol:    ode.NewSolution(256),
		dir:    prob.Direction(),
		params: prob.Params().Clone(),
	}
	r.adaptive = true
	if f, ok := method.(ode.FixedOnly); ok && f.FixedStepOnly() {
		r.adaptive = false
	}
	r.ctrl = newController(method.Order())

	r.integrate()
	r.sol.FinalParams = r.params
	return r.sol, nil
}

func validate(prob *ode.Problem, method ode.Method, opts ode.Options) error {
	if prob == nil || method == nil {
		return ode.ErrNoRHS
	}
	if opts.AbsTol <= 0 || opts.RelTol < 0 {
		return ode.ErrBadTolerance
	}
	if opts.InitialDt <= 0 || opts.MinDt <= 0 || opts.MaxDt < opts.MinDt {
		return ode.ErrBadTolerance
	}
	if opts.MaxRetries < 1 || opts.MaxSteps < 1 || opts.MaxRootIters < 1 || opts.EventTimeTol <= 0 {
		return ode.ErrBadTolerance
	}
	if fo, ok := method.(ode.ForwardOnly); ok && fo.ForwardOnly() && prob.Direction() < 0 {
		return ode.ErrDescendingSpan
	}
	if pc, ok := method.(ode.ProblemChecker); ok {
		if err := pc.CheckProblem(prob); err != nil {
			return err
		}
	}
	return nil
}

// run holds all per-run mutable state. The shared Problem and CallbackSet
// stay untouched; the parameter block is a run-local clone and the solver
// is its single writer between steps.
type run struct {
	prob   *ode.Problem
	method ode.Method
	opts   ode.Options
	proj   *manifold.Projector
	evs    []events.Event
	sol    *ode.Solution
	params ode.Params
	ctrl   *controller

	dir      float64
	adaptive bool

	// pending preset times per event index, in firing order for the run's
	// direction; consumed heads never refire
	pending map[int][]float64

	// last continuous-condition values at the current accepted point; a
	// consumed root leaves a zero here and is excluded from the next
	// search interval
	lastCont map[int]float64
}

func (r *run) integrate() {
	t0, tf := r.prob.Span()
	t := t0
	x := r.prob.X0()
	dx := r.prob.Eval(x, r.params, t)
	r.sol.Append(t, x, dx)

	if t0 == tf {
		r.sol.Status = ode.Success
		return
	}

	r.initEvents(t0, tf)

	span := math.Abs(tf - t0)
	dt := clamp(r.opts.InitialDt, r.opts.MinDt, math.Min(r.opts.MaxDt, span))

	for steps := 0; ; steps++ {
		if steps >= r.opts.MaxSteps {
			// step budget exhausted without reaching the span boundary
			r.sol.Status = ode.MaxRetriesExceeded
			return
		}

		step, ok := r.trialStep(t, x, dx, dt, tf)
		if !ok {
			return // status already set
		}
		dt = step.nextDt

		// locate continuous events over (t, step.t]; may truncate the step
		r.localize(&step, t, x, dx)

		fired, terminal := r.applyEffects(&step)

		mutated := fired
		if r.proj != nil && (r.sol.Stats.Steps+1)%r.proj.Every() == 0 {
			projected, converged := r.proj.Project(step.x)
			if converged {
				if !sameState(projected, step.x) {
					mutated = true
				}
				step.x = projected
			} else {
				step.warnings = append(step.warnings, pendingWarning{
					kind: ode.ProjectionFailure,
					t:    step.t,
					msg:  "newton correction did not converge; keeping unprojected state",
				})
			}
		}

		if mutated {
			step.dx = r.prob.Eval(step.x, r.params, step.t)
		}

		r.sol.Append(step.t, step.x, step.dx)
		r.sol.Stats.Steps++
		r.sol.Stats.LastDt = math.Abs(step.t - t)
		for _, w := range step.warnings {
			r.sol.Warn(w.kind, w.t, w.msg)
		}
		r.refreshConditions(step.x, step.t)

		if terminal {
			r.sol.Status = ode.Terminated
			return
		}
		if step.t == tf {
			r.sol.Status = ode.Success
			return
		}
		t, x, dx = step.t, step.x, step.dx
	}
}

// trial is one accepted (error-controlled, possibly truncated) step before
// event effects and projection.
type trial struct {
	t        float64 // right endpoint
	x        ode.State
	dx       ode.State // derivative at the right endpoint, pre-effect
	nextDt   float64   // proposal for the next step
	presetAt float64   // exact preset time hit, NaN if none
	contAt   map[int]float64
	warnings []pendingWarning
}

type pendingWarning struct {
	kind ode.WarningKind
	t    float64
	msg  string
}

// trialStep runs the propose/reject loop until a candidate passes error
// control, truncating the proposal so it never overshoots the span end or
// a pending preset time. On failure it sets the solution status and
// returns ok=false.
func (r *run) trialStep(t float64, x, dx ode.State, dt, tf float64) (trial, bool) {
	retries := 0
	for {
		dtEff, target, isPreset := r.ceiling(t, dt, tf)

		candidate, errVec, err := r.stepOnce(x, t, r.dir*dtEff)
		if err != nil || !candidate.IsValid() {
			r.sol.Status = ode.Unstable
			return trial{}, false
		}

		if r.adaptive && errVec != nil {
			norm := errNorm(errVec, x, candidate, r.opts.AbsTol, r.opts.RelTol)
			if norm > 1 {
				r.sol.Stats.Rejected++
				retries++
				if retries > r.opts.MaxRetries {
					r.sol.Status = ode.MaxRetriesExceeded
					return trial{}, false
				}
				dt = r.ctrl.reject(dt, norm)
				if dt < r.opts.MinDt {
					r.sol.Status = ode.DtTooSmall
					return trial{}, false
				}
				continue
			}
			dt = clamp(r.ctrl.accept(dt, norm), r.opts.MinDt, r.opts.MaxDt)
		}

		tNew := t + r.dir*dtEff
		if !math.IsNaN(target) {
			tNew = target // land on the boundary or preset time bit-exactly
		}
		st := trial{t: tNew, x: candidate, nextDt: dt, presetAt: math.NaN()}
		if isPreset {
			st.presetAt = target
		}
		st.dx = r.prob.Eval(candidate, r.params, tNew)
		return st, true
	}
}

// ceiling bounds the proposal so the right endpoint never overshoots the
// span end or the next pending preset time. target is the exact landing
// time when truncated (NaN otherwise).
func (r *run) ceiling(t, dt, tf float64) (dtEff, target float64, isPreset bool) {
	dtEff = dt
	target = math.NaN()

	remaining := (tf - t) * r.dir
	if dtEff >= remaining {
		dtEff = remaining
		target = tf
	}

	if tp, ok := r.nextPreset(); ok {
		ahead := (tp - t) * r.dir
		if ahead > 0 && ahead <= dtEff {
			dtEff = ahead
			target = tp
			isPreset = true
		}
	}
	return dtEff, target, isPreset
}

// stepOnce produces a candidate and, when adaptive, a local error
// estimate: the method's embedded estimate when it has one, otherwise
// step-doubling (two half steps against one full step).
func (r *run) stepOnce(x ode.State, t, dtSigned float64) (ode.State, ode.State, error) {
	if !r.adaptive {
		c, err := r.method.Step(r.prob, r.params, x, t, dtSigned)
		return c, nil, err
	}
	if est, ok := r.method.(ode.ErrorEstimater); ok {
		return est.StepWithError(r.prob, r.params, x, t, dtSigned)
	}

	full, err := r.method.Step(r.prob, r.params, x, t, dtSigned)
	if err != nil {
		return nil, nil, err
	}
	half := dtSigned / 2
	xh, err := r.method.Step(r.prob, r.params, x, t, half)
	if err != nil {
		return nil, nil, err
	}
	x2, err := r.method.Step(r.prob, r.params, xh, t+half, half)
	if err != nil {
		return nil, nil, err
	}
	scale := 1.0 / (math.Pow(2, float64(r.method.Order())) - 1)
	errVec := make(ode.State, len(x))
	for i := range errVec {
		errVec[i] = (x2[i] - full[i]) * scale
	}
	return x2, errVec, nil
}

// localize searches (t, step.t] for continuous-event sign changes on the
// step's dense interpolant and truncates the step at the earliest root.
// Roots within the time tolerance of the earliest count as simultaneous.
func (r *run) localize(step *trial, t float64, x, dx ode.State) {
	if len(r.lastCont) == 0 {
		return
	}

	itp := func(tt float64) ode.State {
		return ode.Hermite(t, x, dx, step.t, step.x, step.dx, tt)
	}

	roots := map[int]float64{}
	earliest := math.NaN()
	for i, ev := range r.evs {
		c, ok := ev.(events.Continuous)
		if !ok {
			continue
		}
		gL := r.lastCont[i]
		if gL == 0 {
			continue // consumed root, excluded from this interval
		}
		gR := c.Condition(step.x, step.t)
		if gL*gR > 0 {
			continue
		}
		root, converged := events.Bisect(func(tt float64) float64 {
			return c.Condition(itp(tt), tt)
		}, t, step.t, gL, gR, r.opts.EventTimeTol, r.opts.MaxRootIters)
		if !converged {
			step.warnings = append(step.warnings, pendingWarning{
				kind: ode.RootFindFailure,
				t:    root,
				msg:  fmt.Sprintf("event %d: bracket not closed within tolerance", i),
			})
		}
		roots[i] = root
		if math.IsNaN(earliest) || (root-earliest)*r.dir < 0 {
			earliest = root
		}
	}
	if len(roots) == 0 {
		return
	}

	step.contAt = map[int]float64{}
	for i, root := range roots {
		if math.Abs(root-earliest) <= r.opts.EventTimeTol {
			step.contAt[i] = earliest
		}
	}
	if earliest != step.t {
		// truncate at the crossing; the candidate comes from the
		// interpolant, preset times beyond it stay pending
		step.t = earliest
		step.x = itp(earliest)
		step.dx = r.prob.Eval(step.x, r.params, earliest)
		step.presetAt = math.NaN()
	}
}

// applyEffects fires everything due at the accepted right endpoint in
// registration order against the same state snapshot updated sequentially.
// A terminal continuous event stops the loop immediately after its effect.
func (r *run) applyEffects(step *trial) (fired, terminal bool) {
	for i, ev := range r.evs {
		switch e := ev.(type) {
		case events.PresetTime:
			if math.IsNaN(step.presetAt) {
				continue
			}
			if q := r.pending[i]; len(q) > 0 && q[0] == step.presetAt {
				r.pending[i] = q[1:]
				if e.Effect != nil {
					e.Effect(step.x, r.params, step.t)
				}
				fired = true
			}
		case events.Discrete:
			if e.Condition(step.x, step.t) {
				if e.Effect != nil {
					e.Effect(step.x, r.params, step.t)
				}
				fired = true
			}
		case events.Continuous:
			if _, due := step.contAt[i]; !due {
				continue
			}
			if e.Effect != nil {
				e.Effect(step.x, r.params, step.t)
			}
			fired = true
			if e.Terminal {
				return fired, true
			}
		}
	}
	return fired, false
}

// initEvents builds the per-run pending preset queues (times strictly
// ahead of t0 toward tf, in firing order) and seeds the continuous
// condition values at the initial state.
func (r *run) initEvents(t0, tf float64) {
	r.pending = map[int][]float64{}
	r.lastCont = map[int]float64{}
	x0 := r.prob.X0()
	for i, ev := range r.evs {
		switch e := ev.(type) {
		case events.PresetTime:
			var q []float64
			if r.dir >= 0 {
				for _, tp := range e.Times {
					if tp > t0 && tp <= tf {
						q = append(q, tp)
					}
				}
			} else {
				for k := len(e.Times) - 1; k >= 0; k-- {
					tp := e.Times[k]
					if tp < t0 && tp >= tf {
						q = append(q, tp)
					}
				}
			}
			r.pending[i] = q
		case events.Continuous:
			r.lastCont[i] = e.Condition(x0, t0)
		}
	}
}

func (r *run) nextPreset() (float64, bool) {
	best := math.NaN()
	for _, q := range r.pending {
		if len(q) == 0 {
			continue
		}
		if math.IsNaN(best) || (q[0]-best)*r.dir < 0 {
			best = q[0]
		}
	}
	return best, !math.IsNaN(best)
}

func (r *run) refreshConditions(x ode.State, t float64) {
	for i, ev := range r.evs {
		if c, ok := ev.(events.Continuous); ok {
			r.lastCont[i] = c.Condition(x, t)
		}
	}
}

// errNorm is the weighted RMS norm of the error estimate: each component
// is scaled by atol + rtol*max(|x_i|, |xnew_i|), so norm <= 1 means the
// step meets the tolerances.
func errNorm(e, x0, x1 ode.State, atol, rtol float64) float64 {
	sum := 0.0
	for i := range e {
		sc := atol + rtol*math.Max(math.Abs(x0[i]), math.Abs(x1[i]))
		v := e[i] / sc
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(e)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sameState(a, b ode.State) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
