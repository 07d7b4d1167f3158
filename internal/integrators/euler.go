package integrators

import "github.com/san-kum/chargesim/internal/dynamo"

// Euler is explicit forward Euler: positions advance with the velocity held
// at the start of the step. Kept for comparison; it gains energy steadily and
// leans on the normalizer far more than SymplecticEuler does.
type Euler struct {
	forces []dynamo.Vec2
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(field dynamo.ForceField, ps []dynamo.Particle, dt float64) {
	e.forces = field.Forces(ps, e.forces)
	drift(ps, dt)
	kick(ps, e.forces, dt)
}
