package solver

import (
	"errors"
	"fmt"
)

// Failure modes surfaced by the solver. These propagate unchanged to the
// caller; no retry happens at this layer.
var (
	// ErrMaxSteps indicates the integration step budget ran out before the
	// step's termination condition was met.
	ErrMaxSteps = errors.New("solver: maximum number of steps exceeded")

	// ErrInfeasible indicates a termination condition that cannot be reached
	// from the current state.
	ErrInfeasible = errors.New("solver: termination condition not reachable")

	// ErrMissingParameter indicates the parameter set lacks a value the cell
	// model needs.
	ErrMissingParameter = errors.New("solver: missing parameter")
)

// SolveError carries the position inside the experiment where integration
// failed.
type SolveError struct {
	Cycle   int
	Step    int
	Time    float64
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%v (cycle %d, step %d, t=%.1fs)", e.Wrapped, e.Cycle+1, e.Step+1, e.Time)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
