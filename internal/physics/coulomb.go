package physics

import "github.com/san-kum/chargesim/internal/dynamo"

const (
	DefaultForceConstant = 25000.0
	DefaultMinDistance   = 1e-3
)

// Coulomb is a repulsive inverse-square field, F = K·qa·qb/d².
//
// Force accumulation visits every ordered pair, so a step costs O(n²). That
// is fine for the tens of particles this is tuned for; past a few thousand a
// tree or grid method is needed.
type Coulomb struct {
	K float64
	// MinDistance clamps the separation of coincident or near-coincident
	// particles so force and potential stay finite.
	MinDistance float64
}

func NewCoulomb(k float64) *Coulomb {
	return &Coulomb{
		K:           k,
		MinDistance: DefaultMinDistance,
	}
}

func (c *Coulomb) Distance(a, b dynamo.Particle) float64 {
	return a.Position.Difference(b.Position).Magnitude()
}

func (c *Coulomb) clamped(d float64) float64 {
	if d < c.MinDistance {
		return c.MinDistance
	}
	return d
}

// ForceFrom returns the force particle j exerts on particle i. It points
// from j toward i (angle atan2(yi-yj, xi-xj)), pushing i away. i == j
// yields zero. Coincident particles are split along the X axis, the lower
// ID pushed toward -X.
func (c *Coulomb) ForceFrom(ps []dynamo.Particle, i, j dynamo.ParticleID) dynamo.Vec2 {
	if i == j {
		return dynamo.Vec2{}
	}
	a, b := ps[i], ps[j]

	dir := b.Position.Difference(a.Position)
	d := dir.Magnitude()
	if d == 0 {
		dir = dynamo.Vec2{X: 1}
		if i < j {
			dir = dynamo.Vec2{X: -1}
		}
	} else {
		dir = dir.Scale(1 / d)
	}

	d = c.clamped(d)
	magnitude := c.K * (a.Charge * b.Charge) / (d * d)
	return dir.Scale(magnitude)
}

// Forces accumulates the net force on every particle. The sum for particle
// i runs over the whole arena, including i itself, which contributes zero.
func (c *Coulomb) Forces(ps []dynamo.Particle, out []dynamo.Vec2) []dynamo.Vec2 {
	n := len(ps)
	if cap(out) < n {
		out = make([]dynamo.Vec2, n)
	}
	out = out[:n]

	for i := 0; i < n; i++ {
		var net dynamo.Vec2
		for j := 0; j < n; j++ {
			net = net.Add(c.ForceFrom(ps, dynamo.ParticleID(i), dynamo.ParticleID(j)))
		}
		out[i] = net
	}

	return out
}

// PairPotential is K·qa·qb/d with d clamped to MinDistance.
func (c *Coulomb) PairPotential(a, b dynamo.Particle) float64 {
	d := c.clamped(c.Distance(a, b))
	return c.K * (a.Charge * b.Charge) / d
}

func (c *Coulomb) PotentialEnergy(ps []dynamo.Particle) float64 {
	pe := 0.0
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			pe += c.PairPotential(ps[i], ps[j])
		}
	}
	return pe
}

// AngularMomentum about the origin, charge-weighted.
func (c *Coulomb) AngularMomentum(ps []dynamo.Particle) float64 {
	L := 0.0
	for _, p := range ps {
		L += p.Charge * (p.Position.X*p.Velocity.Y - p.Position.Y*p.Velocity.X)
	}
	return L
}
