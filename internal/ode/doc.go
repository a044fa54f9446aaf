// Package ode provides the core types for ordinary-differential-equation
// integration:
//
//   - [State]: the phase-space vector at a point in time
//   - [Problem]: an immutable bundle of right-hand sides, initial state,
//     time span and parameter block
//   - [Method]: the stepping-rule interface implemented by the method
//     plugins in internal/methods
//   - [Solution]: the accepted trajectory with dense interpolation
//
// # Capability upgrades
//
// Method variants advertise extra capabilities through interface upgrades
// rather than inheritance. A method producing an embedded error estimate
// implements [ErrorEstimater]; a method whose structure requires a constant
// step size implements [FixedOnly]; a method that cannot integrate backward
// implements [ForwardOnly]; a method with problem prerequisites (state
// partition, linear operator) implements [ProblemChecker] so misconfiguration
// is rejected before any stepping begins.
//
// # Thread safety
//
// A Problem is immutable and may be shared across concurrent runs. Method
// instances carry scratch buffers and must not be shared; Solution values
// are owned by a single run.
package ode
