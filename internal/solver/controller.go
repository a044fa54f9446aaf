package solver

import "math"

// controller is the proportional-integral step-size controller. Growth and
// shrink factors are clamped so one noisy error estimate cannot swing the
// step size into oscillatory over/under-correction.
type controller struct {
	safety   float64
	minScale float64
	maxScale float64
	alpha    float64 // proportional exponent
	beta     float64 // integral exponent on the previous error norm
	prevErr  float64
}

func newController(order int) *controller {
	k := float64(order + 1)
	return &controller{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		alpha:    0.7 / k,
		beta:     0.4 / k,
		prevErr:  1.0,
	}
}

// accept returns the grown proposal after a step with error norm <= 1.
func (c *controller) accept(dt, norm float64) float64 {
	var scale float64
	if norm == 0 {
		scale = c.maxScale
	} else {
		scale = c.safety * math.Pow(norm, -c.alpha) * math.Pow(c.prevErr, c.beta)
		scale = math.Max(c.minScale, math.Min(c.maxScale, scale))
	}
	c.prevErr = math.Max(norm, 1e-10)
	return dt * scale
}

// reject returns the shrunk proposal after a step with error norm > 1.
func (c *controller) reject(dt, norm float64) float64 {
	scale := math.Max(c.minScale, c.safety*math.Pow(norm, -c.alpha))
	return dt * math.Min(scale, 1.0)
}
