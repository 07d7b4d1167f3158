package analysis

import (
	"math"

	"github.com/san-kum/chargesim/internal/dynamo"
)

// Divergence estimates the largest Lyapunov exponent of a particle system by
// trajectory separation: particle id of a copy is displaced by perturbation
// along X, both copies are stepped side by side, and the mean log growth of
// their phase-space separation is returned per unit time. The copy is pulled
// back toward the reference whenever the separation exceeds 1.
//
// ps is not modified.
func Divergence(sim *dynamo.Simulator, ps []dynamo.Particle, id dynamo.ParticleID, dt float64, steps int, perturbation float64) float64 {
	if len(ps) == 0 || int(id) < 0 || int(id) >= len(ps) || perturbation <= 0 || steps <= 0 {
		return 0
	}

	x := dynamo.Clone(ps)
	sim.Confine(x)
	xp := dynamo.Clone(x)
	xp[id].Position.X += perturbation

	e := sim.Energy(x)
	ep := sim.Energy(xp)

	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		e, _ = sim.Advance(x, dt, e)
		ep, _ = sim.Advance(xp, dt, ep)

		sep := separation(x, xp)
		if sep > 0 {
			sumLog += math.Log(sep / perturbation)
			count++
		}

		if sep > 1.0 {
			scale := perturbation / sep
			for j := range xp {
				xp[j].Position = x[j].Position.Add(x[j].Position.Difference(xp[j].Position).Scale(scale))
				xp[j].Velocity = x[j].Velocity.Add(x[j].Velocity.Difference(xp[j].Velocity).Scale(scale))
			}
			ep = sim.Energy(xp)
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}

func separation(a, b []dynamo.Particle) float64 {
	sum := 0.0
	for i := range a {
		dp := a[i].Position.Difference(b[i].Position)
		dv := a[i].Velocity.Difference(b[i].Velocity)
		sum += dp.Dot(dp) + dv.Dot(dv)
	}
	return math.Sqrt(sum)
}
