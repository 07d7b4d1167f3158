package spawn

import (
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestRandom(t *testing.T) {
	cfg := config.DefaultConfig()
	ps, err := Random(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	if len(ps) != cfg.Particles.Count {
		t.Fatalf("expected %d particles, got %d", cfg.Particles.Count, len(ps))
	}
	for i, p := range ps {
		if p.Charge < cfg.Particles.MinCharge || p.Charge > cfg.Particles.MaxCharge {
			t.Errorf("particle %d charge %f out of range", i, p.Charge)
		}
		if p.Radius != p.Charge/cfg.Physics.PixelsPerUnit {
			t.Errorf("particle %d radius %f, want charge/ppu", i, p.Radius)
		}
		r := p.Radius * cfg.Physics.PixelsPerUnit
		if p.Position.X < r || p.Position.X > cfg.World.Width-r || p.Position.Y < r || p.Position.Y > cfg.World.Height-r {
			t.Errorf("particle %d extent crosses a wall: %v radius %f", i, p.Position, r)
		}
		if p.Velocity.X < 0 || p.Velocity.X >= cfg.Particles.MaxVelocity || p.Velocity.Y < 0 || p.Velocity.Y >= cfg.Particles.MaxVelocity {
			t.Errorf("particle %d velocity out of range: %v", i, p.Velocity)
		}
		if !colorPattern.MatchString(p.Color) {
			t.Errorf("particle %d bad color %q", i, p.Color)
		}
	}
}

func TestRandomKeepsExtentInsideWalls(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Particles.Count = 200
	box := physics.NewBox(cfg.World.Width, cfg.World.Height, cfg.Physics.PixelsPerUnit)

	for seed := int64(1); seed <= 20; seed++ {
		ps, err := Random(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: spawn failed: %v", seed, err)
		}
		for i, p := range ps {
			if !box.Contains(p) {
				t.Fatalf("seed %d: particle %d at %v overlaps a wall", seed, i, p.Position)
			}
		}
		if n := box.Resolve(dynamo.Clone(ps)); n != 0 {
			t.Fatalf("seed %d: walls moved %d particles at spawn", seed, n)
		}
	}
}

func TestInsideCentresOversizedParticle(t *testing.T) {
	tests := []struct {
		extent, r, u float64
		want         float64
	}{
		{100, 10, 0, 10},
		{100, 10, 0.5, 50},
		{100, 60, 0.9, 50},
		{100, 50, 0.2, 50},
	}
	for _, tt := range tests {
		if got := inside(tt.extent, tt.r, tt.u); got != tt.want {
			t.Errorf("inside(%v, %v, %v) = %v, want %v", tt.extent, tt.r, tt.u, got, tt.want)
		}
	}
}

func TestRandomIsDeterministicPerSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	spawn := FromSeed(cfg)

	a, _ := spawn(42)
	b, _ := spawn(42)
	c, _ := spawn(43)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different particle %d", i)
		}
	}
	if a[0] == c[0] {
		t.Error("different seeds produced identical particles")
	}
}

func TestRandomPresetsOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Particles.UniformCharge = true
	cfg.Particles.AtRest = true

	ps, err := Random(cfg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	for i, p := range ps {
		if p.Charge != cfg.Particles.MinCharge {
			t.Errorf("particle %d charge %f, want %f", i, p.Charge, cfg.Particles.MinCharge)
		}
		if p.Velocity != (dynamo.Vec2{}) {
			t.Errorf("particle %d not at rest: %v", i, p.Velocity)
		}
	}
}

func TestRandomRejectsNonPositiveCharge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Particles.MinCharge = 0
	cfg.Particles.UniformCharge = true

	_, err := Random(cfg, rand.New(rand.NewSource(1)))
	if !errors.Is(err, dynamo.ErrNonPositiveCharge) {
		t.Errorf("expected ErrNonPositiveCharge, got %v", err)
	}
}
