package integrators

import "github.com/san-kum/chargesim/internal/dynamo"

// Leapfrog is kick-drift-kick: half kick from the start-of-step forces, a
// full drift, then a half kick from forces at the drifted positions.
type Leapfrog struct {
	forces []dynamo.Vec2
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(field dynamo.ForceField, ps []dynamo.Particle, dt float64) {
	halfDt := dt * 0.5

	l.forces = field.Forces(ps, l.forces)
	kick(ps, l.forces, halfDt)
	drift(ps, dt)

	l.forces = field.Forces(ps, l.forces)
	kick(ps, l.forces, halfDt)
}
