package physics

import (
	"math"

	"github.com/san-kum/chargesim/internal/dynamo"
)

// EnergyNormalizer rescales all velocities by one common factor so that
// total energy returns to the pre-step snapshot. Discrete pairwise forces
// are not exactly conservative; this absorbs the error every step.
type EnergyNormalizer struct {
	// MinKinetic is the kinetic energy at or below which there is nothing
	// to rescale and normalization is skipped.
	MinKinetic float64
}

func NewNormalizer() *EnergyNormalizer {
	return &EnergyNormalizer{}
}

// Normalize applies f = sqrt((before-after)/ke + 1) to every velocity.
// When ke is zero the step is left alone. When the radicand is negative the
// potential alone already exceeds the target; velocities go to zero, which
// is as close as a uniform rescale can get.
func (n *EnergyNormalizer) Normalize(field dynamo.ForceField, ps []dynamo.Particle, before float64) dynamo.Correction {
	ke := dynamo.TotalKinetic(ps)
	pe := field.PotentialEnergy(ps)
	after := ke + pe

	corr := dynamo.Correction{
		Before:  before,
		After:   after,
		Kinetic: ke,
		Factor:  1,
		Energy:  after,
	}

	if ke <= n.MinKinetic || math.IsNaN(before) || math.IsInf(before, 0) {
		return corr
	}

	radicand := (before-after)/ke + 1
	if radicand < 0 {
		radicand = 0
		corr.Clamped = true
	}
	f := math.Sqrt(radicand)

	for i := range ps {
		ps[i].Velocity = ps[i].Velocity.Scale(f)
	}

	corr.Factor = f
	corr.Applied = true
	// Positions are untouched, so only kinetic energy needs recomputing.
	corr.Energy = dynamo.TotalKinetic(ps) + pe
	return corr
}
