package ode

// Status is the outcome of a run. Fatal statuses terminate integration;
// the partial solution accumulated so far is still returned.
type Status int

const (
	Success Status = iota
	Terminated
	DtTooSmall
	MaxRetriesExceeded
	Unstable
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Terminated:
		return "terminated"
	case DtTooSmall:
		return "dt_too_small"
	case MaxRetriesExceeded:
		return "max_retries_exceeded"
	case Unstable:
		return "unstable"
	}
	return "unknown"
}

// Fatal reports whether the status aborted the run before the span was
// exhausted by anything other than a terminal event.
func (s Status) Fatal() bool {
	return s == DtTooSmall || s == MaxRetriesExceeded || s == Unstable
}

// WarningKind classifies recoverable failures. Integration continues with
// the best available approximation.
type WarningKind int

const (
	RootFindFailure WarningKind = iota
	ProjectionFailure
)

func (k WarningKind) String() string {
	switch k {
	case RootFindFailure:
		return "event_root_find_failure"
	case ProjectionFailure:
		return "projection_failure"
	}
	return "unknown"
}

// Warning is attached to the solution entry it belongs to.
type Warning struct {
	Kind    WarningKind
	Entry   int // index into Times/States
	Time    float64
	Message string
}

// Solution is the accepted trajectory: (time, state, derivative) triples in
// strictly monotonic time order, plus termination metadata. It is owned by
// one run and immutable once the run returns.
type Solution struct {
	Times    []float64
	States   []State
	Derivs   []State
	Status   Status
	Warnings []Warning
	Stats    Stats

	// FinalParams is the run-local parameter block after all event
	// effects, kept for post-hoc inspection.
	FinalParams Params
}

func NewSolution(capHint int) *Solution {
	return &Solution{
		Times:  make([]float64, 0, capHint),
		States: make([]State, 0, capHint),
		Derivs: make([]State, 0, capHint),
	}
}

// Append records an accepted step. State and derivative are cloned so later
// in-place mutation by event effects cannot corrupt history.
func (s *Solution) Append(t float64, x, dx State) {
	s.Times = append(s.Times, t)
	s.States = append(s.States, x.Clone())
	s.Derivs = append(s.Derivs, dx.Clone())
}

func (s *Solution) Len() int { return len(s.Times) }

// Last returns the final accepted time and state.
func (s *Solution) Last() (float64, State) {
	n := len(s.Times)
	if n == 0 {
		return 0, nil
	}
	return s.Times[n-1], s.States[n-1]
}

// Warn attaches a recoverable failure to the most recent entry.
func (s *Solution) Warn(kind WarningKind, t float64, msg string) {
	s.Warnings = append(s.Warnings, Warning{
		Kind:    kind,
		Entry:   len(s.Times) - 1,
		Time:    t,
		Message: msg,
	})
}

// At evaluates the trajectory at any t within the achieved span using
// per-segment cubic Hermite interpolation; grid points are returned
// exactly.
func (s *Solution) At(t float64) (State, error) {
	n := len(s.Times)
	if n == 0 {
		return nil, ErrOutOfSpan
	}
	if n == 1 {
		if t == s.Times[0] {
			return s.States[0].Clone(), nil
		}
		return nil, configErrf(ErrOutOfSpan, "t=%v, single sample at %v", t, s.Times[0])
	}

	forward := s.Times[n-1] >= s.Times[0]
	lo, hi := s.Times[0], s.Times[n-1]
	if !forward {
		lo, hi = hi, lo
	}
	if t < lo || t > hi {
		return nil, configErrf(ErrOutOfSpan, "t=%v, span [%v, %v]", t, s.Times[0], s.Times[n-1])
	}

	i := s.segment(t, forward)
	return Hermite(s.Times[i], s.States[i], s.Derivs[i],
		s.Times[i+1], s.States[i+1], s.Derivs[i+1], t), nil
}

// segment finds i such that t lies in [Times[i], Times[i+1]] (direction-aware).
func (s *Solution) segment(t float64, forward bool) int {
	lo, hi := 0, len(s.Times)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if forward == (s.Times[mid] <= t) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// Components extracts the time series of the selected state components.
func (s *Solution) Components(indices ...int) [][]float64 {
	out := make([][]float64, len(indices))
	for k, idx := range indices {
		series := make([]float64, len(s.States))
		for i, x := range s.States {
			series[i] = x[idx]
		}
		out[k] = series
	}
	return out
}

// Hermite evaluates the cubic Hermite interpolant defined by the endpoint
// states and derivatives of one accepted step. It is exact at both
// endpoints and third-order accurate in between, which matches the event
// system's time tolerance needs without fresh derivative evaluations.
func Hermite(t0 float64, x0, d0 State, t1 float64, x1, d1 State, t float64) State {
	h := t1 - t0
	if h == 0 {
		return x0.Clone()
	}
	theta := (t - t0) / h
	th2 := theta * theta
	th3 := th2 * theta

	h00 := 2*th3 - 3*th2 + 1
	h10 := th3 - 2*th2 + theta
	h01 := -2*th3 + 3*th2
	h11 := th3 - th2

	out := make(State, len(x0))
	for i := range x0 {
		out[i] = h00*x0[i] + h10*h*d0[i] + h01*x1[i] + h11*h*d1[i]
	}
	return out
}
