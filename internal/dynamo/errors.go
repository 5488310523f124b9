package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for shallow-water operations.
var (
	// ErrInvalidConfig indicates bad grid geometry or a non-positive constant.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNotInitialized indicates a step was requested on a grid that was never initialized.
	ErrNotInitialized = errors.New("dynamo: grid not initialized")

	// ErrUnstable indicates a field went NaN or Inf.
	ErrUnstable = errors.New("dynamo: simulation unstable (field diverged)")

	// ErrRunNotFound indicates a stored run id does not exist.
	ErrRunNotFound = errors.New("dynamo: run not found")
)

// ConfigError names the offending parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.0fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
