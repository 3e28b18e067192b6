package dynamo

import "errors"

// Domain errors for lab operations. None of them is raised from inside a
// scheduler tick; they surface only at boundary calls.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownParam indicates a parameter name the experiment does not own.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrUnknownExperiment indicates a registry lookup miss.
	ErrUnknownExperiment = errors.New("dynamo: unknown experiment")

	// ErrUnknownAction indicates an action id the experiment does not handle.
	ErrUnknownAction = errors.New("dynamo: unknown action")

	// ErrDisposed indicates a boundary call on an unloaded experiment.
	ErrDisposed = errors.New("dynamo: experiment disposed")

	// ErrNotLoaded indicates an experiment that was never attached to a scheduler.
	ErrNotLoaded = errors.New("dynamo: experiment not loaded")
)

// ParamError wraps a parameter failure with its name.
type ParamError struct {
	Name    string
	Wrapped error
}

func (e *ParamError) Error() string {
	return e.Wrapped.Error() + ": " + e.Name
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
