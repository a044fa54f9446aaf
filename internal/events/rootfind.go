package events

import "math"

// Bisect locates a sign change of f inside [a, b] where fa = f(a) and
// fb = f(b) have opposite signs. f is expected to be cheap (a condition
// evaluated on the step's dense interpolant, not a fresh derivative
// evaluation). The search stops when the bracket width drops below tol or
// after maxIter halvings; the second return reports convergence. The best
// estimate is returned either way so a failed search is a warning, not a
// dead end.
func Bisect(f func(float64) float64, a, b, fa, fb, tol float64, maxIter int) (float64, bool) {
	if fa == 0 {
		return a, true
	}
	if fb == 0 {
		return b, true
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return b, false
	}

	lo, hi := a, b
	flo := fa
	for i := 0; i < maxIter; i++ {
		if math.Abs(hi-lo) <= tol {
			return hi, true
		}
		mid := lo + (hi-lo)/2
		fmid := f(mid)
		if fmid == 0 {
			return mid, true
		}
		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return hi, math.Abs(hi-lo) <= tol
}
