// Package spawn builds starting particle sets.
package spawn

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
)

const hexDigits = "0123456789abcdef"

// Random places cfg.Particles.Count particles uniformly inside the world,
// each with its whole extent clear of the walls.
// Velocity components are drawn from [0, MaxVelocity). Radius is charge
// divided by pixels-per-unit, so on screen a particle's radius in pixels
// equals its charge.
func Random(cfg *config.Config, rng *rand.Rand) ([]dynamo.Particle, error) {
	pc := cfg.Particles
	ps := make([]dynamo.Particle, 0, pc.Count)

	for i := 0; i < pc.Count; i++ {
		charge := pc.MinCharge
		if !pc.UniformCharge && pc.MaxCharge > pc.MinCharge {
			charge = pc.MinCharge + rng.Float64()*(pc.MaxCharge-pc.MinCharge)
		}

		p, err := dynamo.NewParticle(charge, charge/cfg.Physics.PixelsPerUnit, RandomColor(rng))
		if err != nil {
			return nil, fmt.Errorf("spawn particle %d: %w", i, err)
		}

		r := p.Radius * cfg.Physics.PixelsPerUnit
		p.Position = dynamo.Vec2{
			X: inside(cfg.World.Width, r, rng.Float64()),
			Y: inside(cfg.World.Height, r, rng.Float64()),
		}
		if !pc.AtRest {
			p.Velocity = dynamo.Vec2{
				X: pc.MaxVelocity * rng.Float64(),
				Y: pc.MaxVelocity * rng.Float64(),
			}
		}

		ps = append(ps, p)
	}

	return ps, nil
}

// inside maps u in [0,1) onto [r, extent-r]. A particle too wide for the
// extent is centred.
func inside(extent, r, u float64) float64 {
	if extent <= 2*r {
		return extent / 2
	}
	return r + u*(extent-2*r)
}

// FromSeed is Random with a fresh source, usable as a dynamo.Spawner.
func FromSeed(cfg *config.Config) dynamo.Spawner {
	return func(seed int64) ([]dynamo.Particle, error) {
		return Random(cfg, rand.New(rand.NewSource(seed)))
	}
}

// RandomColor returns a #rrggbb string.
func RandomColor(rng *rand.Rand) string {
	b := make([]byte, 7)
	b[0] = '#'
	for i := 1; i < len(b); i++ {
		b[i] = hexDigits[rng.Intn(len(hexDigits))]
	}
	return string(b)
}
