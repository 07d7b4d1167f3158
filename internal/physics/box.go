package physics

import "github.com/san-kum/chargesim/internal/dynamo"

const DefaultPixelsPerUnit = 10.0

// Box reflects particles off the walls of [0,Width]x[0,Height]. Particle
// radii are in world units and scaled by PixelsPerUnit into box units.
type Box struct {
	Width, Height float64
	PixelsPerUnit float64
}

func NewBox(width, height, pixelsPerUnit float64) *Box {
	return &Box{Width: width, Height: height, PixelsPerUnit: pixelsPerUnit}
}

// Resolve clamps every particle that crosses a wall back inside and flips
// that axis' velocity. Axes are handled independently. A particle wider
// than the box ends up against the lower wall.
func (b *Box) Resolve(ps []dynamo.Particle) int {
	bounces := 0
	for i := range ps {
		p := &ps[i]
		r := p.Radius * b.PixelsPerUnit

		var hit bool
		p.Position.X, p.Velocity.X, hit = reflect(p.Position.X, p.Velocity.X, r, b.Width)
		if hit {
			bounces++
		}
		p.Position.Y, p.Velocity.Y, hit = reflect(p.Position.Y, p.Velocity.Y, r, b.Height)
		if hit {
			bounces++
		}
	}
	return bounces
}

// Contains reports whether p's extent lies fully inside the box.
func (b *Box) Contains(p dynamo.Particle) bool {
	r := p.Radius * b.PixelsPerUnit
	return p.Position.X-r >= 0 && p.Position.X+r <= b.Width &&
		p.Position.Y-r >= 0 && p.Position.Y+r <= b.Height
}

func reflect(pos, vel, r, bound float64) (float64, float64, bool) {
	if pos-r < 0 {
		return r, -vel, true
	}
	if pos+r > bound {
		return bound - r, -vel, true
	}
	return pos, vel, false
}
