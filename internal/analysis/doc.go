// Package analysis characterizes long-run dynamics across parameter
// ranges.
//
// [ParamSweep] integrates a family of problems over an evenly spaced
// parameter grid, runs them in parallel and reduces each trajectory to the
// attractor values of one state component. Plotting the attractor against
// the parameter gives the classic bifurcation picture: fixed points appear
// as a single branch, limit cycles as bands, chaos as scatter.
package analysis
