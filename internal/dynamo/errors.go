package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for particle simulation.
var (
	// ErrNonPositiveCharge indicates a particle built with charge <= 0.
	// Charge doubles as inertial mass, so it must be strictly positive.
	ErrNonPositiveCharge = errors.New("dynamo: particle charge must be positive")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidState indicates a particle position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrEmptySystem indicates a run was requested with no particles.
	ErrEmptySystem = errors.New("dynamo: no particles to simulate")

	// ErrUnknownParticle indicates a ParticleID outside the arena.
	ErrUnknownParticle = errors.New("dynamo: unknown particle id")
)

// SimulationError wraps an error with the step at which it happened.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
