package integrators

import "github.com/san-kum/chargesim/internal/dynamo"

// SymplecticEuler is semi-implicit Euler: all forces are taken from the
// start-of-step positions, every velocity is kicked, and only then are
// positions drifted with the new velocities.
type SymplecticEuler struct {
	forces []dynamo.Vec2
}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Step(field dynamo.ForceField, ps []dynamo.Particle, dt float64) {
	s.forces = field.Forces(ps, s.forces)
	kick(ps, s.forces, dt)
	drift(ps, dt)
}

// kick applies v += (F/charge)·dt to every free particle and zeroes fixed ones.
func kick(ps []dynamo.Particle, forces []dynamo.Vec2, dt float64) {
	for i := range ps {
		p := &ps[i]
		if p.Fixed {
			p.Velocity = dynamo.Vec2{}
			continue
		}
		acc := forces[i].Scale(1 / p.Charge)
		p.Velocity = p.Velocity.Add(acc.Scale(dt))
	}
}

func drift(ps []dynamo.Particle, dt float64) {
	for i := range ps {
		p := &ps[i]
		if p.Fixed {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
	}
}
