package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
)

func TestBounces(t *testing.T) {
	m := NewBounces()
	m.Observe(nil, dynamo.StepReport{Bounces: 2})
	m.Observe(nil, dynamo.StepReport{Bounces: 3})
	if m.Value() != 5 {
		t.Errorf("expected 5 bounces, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMomentum(t *testing.T) {
	m := NewMomentum()
	ps := []dynamo.Particle{
		{Charge: 2, Velocity: dynamo.Vec2{X: 3}},
		{Charge: 1, Velocity: dynamo.Vec2{Y: 8}},
	}
	m.Observe(ps, dynamo.StepReport{})
	if math.Abs(m.Value()-10) > 1e-12 {
		t.Errorf("expected |p| = 10, got %f", m.Value())
	}
}

func TestAngularMomentum(t *testing.T) {
	m := NewAngularMomentum(physics.NewCoulomb(1))
	ps := []dynamo.Particle{
		{Charge: 1, Position: dynamo.Vec2{X: 1}, Velocity: dynamo.Vec2{Y: -2}},
	}
	m.Observe(ps, dynamo.StepReport{})
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("expected |L| = 2, got %f", m.Value())
	}
}

func TestContainment(t *testing.T) {
	box := physics.NewBox(100, 100, 1)
	m := NewContainment(box)
	if m.Value() != 1 {
		t.Error("expected full containment before any observation")
	}

	inside := []dynamo.Particle{{Charge: 1, Radius: 5, Position: dynamo.Vec2{X: 50, Y: 50}}}
	outside := []dynamo.Particle{{Charge: 1, Radius: 60, Position: dynamo.Vec2{X: 60, Y: 60}}}

	m.Observe(inside, dynamo.StepReport{})
	m.Observe(outside, dynamo.StepReport{})
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}
