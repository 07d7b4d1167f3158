package dynamo

import (
	"fmt"
	"math"
)

// ParticleID addresses a particle by its index in the particle slice.
// Self-interaction is detected by comparing IDs, never by comparing values:
// two particles with identical charge and position still repel each other.
type ParticleID int

// Particle is a charged point body. Charge doubles as inertial mass.
// Color is an opaque display attribute the physics never reads.
type Particle struct {
	Charge   float64
	Radius   float64
	Position Vec2
	Velocity Vec2
	Color    string

	// Fixed particles still exert force but are not moved by integration.
	Fixed bool
}

// NewParticle validates charge and radius and returns a particle at rest at the origin.
func NewParticle(charge, radius float64, color string) (Particle, error) {
	if math.IsNaN(charge) || math.IsInf(charge, 0) {
		return Particle{}, fmt.Errorf("charge %v: %w", charge, ErrParameterBounds)
	}
	if charge <= 0 {
		return Particle{}, fmt.Errorf("charge %v: %w", charge, ErrNonPositiveCharge)
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return Particle{}, fmt.Errorf("radius %v: %w", radius, ErrParameterBounds)
	}
	return Particle{Charge: charge, Radius: radius, Color: color}, nil
}

// Validate reports whether p satisfies the particle invariants.
func (p Particle) Validate() error {
	if _, err := NewParticle(p.Charge, p.Radius, p.Color); err != nil {
		return err
	}
	if !p.IsValid() {
		return ErrInvalidState
	}
	return nil
}

// IsValid reports whether position and velocity are finite.
func (p Particle) IsValid() bool {
	return p.Position.IsValid() && p.Velocity.IsValid()
}

func (p Particle) KineticEnergy() float64 {
	v := p.Velocity.Magnitude()
	return 0.5 * p.Charge * v * v
}

func (p Particle) Momentum() Vec2 {
	return p.Velocity.Scale(p.Charge)
}

// Clone returns an independent copy of ps.
func Clone(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}

// TotalKinetic sums the kinetic energy of every particle.
func TotalKinetic(ps []Particle) float64 {
	ke := 0.0
	for i := range ps {
		ke += ps[i].KineticEnergy()
	}
	return ke
}

// TotalMomentum sums charge-weighted velocities.
func TotalMomentum(ps []Particle) Vec2 {
	var p Vec2
	for i := range ps {
		p = p.Add(ps[i].Momentum())
	}
	return p
}

// TotalEnergy is kinetic plus pairwise potential energy under field.
func TotalEnergy(field ForceField, ps []Particle) float64 {
	return TotalKinetic(ps) + field.PotentialEnergy(ps)
}

// ValidateAll checks every particle and reports the first failing index.
func ValidateAll(ps []Particle) error {
	for i := range ps {
		if err := ps[i].Validate(); err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
	}
	return nil
}
