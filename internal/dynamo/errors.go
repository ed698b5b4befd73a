package dynamo

import "errors"

// Domain errors for simulation runs. All of them leave the model and the
// compiled system untouched; the caller may retry with a different span,
// step size, or parameter sample.
var (
	// ErrInvalidTimeSpan indicates t1 <= t0.
	ErrInvalidTimeSpan = errors.New("dynamo: invalid time span (t1 <= t0)")

	// ErrDiverged indicates a state component exceeded the magnitude bound.
	ErrDiverged = errors.New("dynamo: integration diverged (state exceeded bound)")

	// ErrInvalidState indicates NaN or Inf in the state vector.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive timestep fell below the minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")
)

// SimulationError wraps a run error with step and time context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
