package ode

import (
	"errors"
	"fmt"
)

// Configuration errors, rejected at construction time before any stepping.
var (
	// ErrNoRHS indicates a problem without a right-hand side.
	ErrNoRHS = errors.New("odyn: problem has no right-hand side")

	// ErrEmptyState indicates a zero-length initial state.
	ErrEmptyState = errors.New("odyn: initial state is empty")

	// ErrBadSpan indicates a non-finite time span.
	ErrBadSpan = errors.New("odyn: time span is not finite")

	// ErrBadPartition indicates a momentum/position split outside [1, dim).
	ErrBadPartition = errors.New("odyn: state partition out of range")

	// ErrMissingPartition indicates a method that needs partitioned
	// evaluators was given an unpartitioned problem.
	ErrMissingPartition = errors.New("odyn: method requires a partitioned problem")

	// ErrMissingOperator indicates an IMEX method without a linear operator.
	ErrMissingOperator = errors.New("odyn: method requires a linear operator")

	// ErrDescendingSpan indicates a descending span with a forward-only method.
	ErrDescendingSpan = errors.New("odyn: method cannot integrate a descending span")

	// ErrNonAscendingTimes indicates a preset-time schedule out of order.
	ErrNonAscendingTimes = errors.New("odyn: preset times must be strictly ascending")

	// ErrNilCondition indicates an event registered without a condition.
	ErrNilCondition = errors.New("odyn: event condition must not be nil")

	// ErrNilResidual indicates a constraint registered without a residual.
	ErrNilResidual = errors.New("odyn: constraint residual must not be nil")

	// ErrBadTolerance indicates a non-positive tolerance or step bound.
	ErrBadTolerance = errors.New("odyn: tolerances and step bounds must be positive")

	// ErrDimensionMismatch indicates state/operator dimensions disagree.
	ErrDimensionMismatch = errors.New("odyn: dimension mismatch")

	// ErrOutOfSpan indicates a dense query outside the achieved span.
	ErrOutOfSpan = errors.New("odyn: query time outside solution span")
)

// ConfigError wraps a configuration error with the offending detail.
type ConfigError struct {
	Detail  string
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Wrapped.Error(), e.Detail)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

func configErrf(wrapped error, format string, args ...any) error {
	return &ConfigError{Detail: fmt.Sprintf(format, args...), Wrapped: wrapped}
}
