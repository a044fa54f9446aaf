// Package models provides worked problems exercising every method plugin.
//
// Each model builds an [ode.Problem] from its physical parameters:
//
//   - [Oscillator]: harmonic oscillator, the accuracy workhorse
//   - [Decay]: one-dimensional linear decay
//   - [Kepler]: two-body gravitational problem with a momentum/position
//     partition for symplectic and Nystrom methods, plus conserved-quantity
//     helpers for manifold projection
//   - [Heat]: 1-D diffusion with a tridiagonal Laplacian operator for the
//     IMEX split
//   - [LIF]: leaky integrate-and-fire neuron with a threshold-reset
//     continuous event and scheduled input-current bumps
package models
