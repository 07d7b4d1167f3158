package dynamo_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/integrators"
	"github.com/san-kum/chargesim/internal/physics"
)

func newTestSimulator(k float64) *dynamo.Simulator {
	return dynamo.New(
		physics.NewCoulomb(k),
		integrators.NewSymplecticEuler(),
		dynamo.WithBoundary(physics.NewBox(100, 100, 1)),
		dynamo.WithNormalizer(physics.NewNormalizer()),
	)
}

func spreadParticles() []dynamo.Particle {
	return []dynamo.Particle{
		{Charge: 1, Radius: 1, Position: dynamo.Vec2{X: 20, Y: 20}, Velocity: dynamo.Vec2{X: 1, Y: 0.5}},
		{Charge: 2, Radius: 1, Position: dynamo.Vec2{X: 80, Y: 25}, Velocity: dynamo.Vec2{X: -0.5, Y: 1}},
		{Charge: 3, Radius: 1, Position: dynamo.Vec2{X: 50, Y: 75}, Velocity: dynamo.Vec2{X: 0.2, Y: -1}},
		{Charge: 1.5, Radius: 1, Position: dynamo.Vec2{X: 25, Y: 70}, Velocity: dynamo.Vec2{X: 0.8, Y: 0.3}},
		{Charge: 2.5, Radius: 1, Position: dynamo.Vec2{X: 75, Y: 60}, Velocity: dynamo.Vec2{X: -1, Y: -0.4}},
	}
}

func withinTolerance(got, want float64) bool {
	return math.Abs(got-want) <= 1e-6*math.Max(1, math.Abs(want))
}

func TestSimulatorRun_HoldsEnergy(t *testing.T) {
	s := newTestSimulator(1)
	ps := spreadParticles()
	field := physics.NewCoulomb(1)
	initial := dynamo.TotalEnergy(field, ps)

	cfg := dynamo.Config{Dt: 0.01, Steps: 500, SampleEvery: 50, ValidateState: true}
	result, err := s.Run(context.Background(), ps, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 500 {
		t.Errorf("expected 500 steps, got %d", result.StepsTaken)
	}
	for _, r := range result.Reports {
		if r.Correction.Clamped {
			t.Fatalf("step %d: unexpected clamp", r.Step)
		}
		if !withinTolerance(r.Energy(), initial) {
			t.Fatalf("step %d: energy %f, want %f", r.Step, r.Energy(), initial)
		}
	}
	if !withinTolerance(result.FinalEnergy, initial) {
		t.Errorf("final energy %f, want %f", result.FinalEnergy, initial)
	}
	if result.EnergyDrift > 1e-6 {
		t.Errorf("energy drift too high: %e", result.EnergyDrift)
	}
}

func wallOverlapParticles() []dynamo.Particle {
	return []dynamo.Particle{
		{Charge: 1, Radius: 1, Position: dynamo.Vec2{X: 0.5, Y: 50}, Velocity: dynamo.Vec2{X: -0.5, Y: 0.2}},
		{Charge: 2, Radius: 1, Position: dynamo.Vec2{X: 50, Y: 50}, Velocity: dynamo.Vec2{X: -0.3, Y: 0.4}},
		{Charge: 1, Radius: 1, Position: dynamo.Vec2{X: 50, Y: 99.5}, Velocity: dynamo.Vec2{X: 0.1, Y: 0.2}},
	}
}

func TestSimulatorRun_ConfinesBeforeMeasuringEnergy(t *testing.T) {
	s := newTestSimulator(1)
	ps := wallOverlapParticles()
	before := dynamo.Clone(ps)

	result, err := s.Run(context.Background(), ps, dynamo.Config{Dt: 0.01, Steps: 200, SampleEvery: 50, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	start := result.Samples[0].Particles
	if start[0].Position.X != 1 || start[0].Velocity.X != 0.5 {
		t.Errorf("particle 0 not confined at start: %+v", start[0])
	}
	if start[2].Position.Y != 99 || start[2].Velocity.Y != -0.2 {
		t.Errorf("particle 2 not confined at start: %+v", start[2])
	}
	confined := dynamo.TotalEnergy(physics.NewCoulomb(1), start)
	if result.InitialEnergy != confined {
		t.Errorf("initial energy %f, want energy of the confined state %f", result.InitialEnergy, confined)
	}

	for _, r := range result.Reports {
		if r.Correction.Clamped {
			t.Fatalf("step %d: unexpected clamp", r.Step)
		}
		if !withinTolerance(r.Energy(), confined) {
			t.Fatalf("step %d: energy %f, want %f", r.Step, r.Energy(), confined)
		}
	}
	for i := range ps {
		if ps[i] != before[i] {
			t.Errorf("input particle %d modified", i)
		}
	}
}

func TestSimulatorConfineWithoutBoundary(t *testing.T) {
	s := dynamo.New(physics.NewCoulomb(1), integrators.NewSymplecticEuler())
	ps := wallOverlapParticles()
	if n := s.Confine(ps); n != 0 {
		t.Errorf("expected no reflections without walls, got %d", n)
	}
	if ps[0].Position.X != 0.5 {
		t.Errorf("particle moved without walls: %+v", ps[0])
	}
}

func TestSimulatorRun_DoesNotMutateInput(t *testing.T) {
	s := newTestSimulator(1)
	ps := spreadParticles()
	before := dynamo.Clone(ps)

	if _, err := s.Run(context.Background(), ps, dynamo.Config{Dt: 0.01, Steps: 10}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for i := range ps {
		if ps[i] != before[i] {
			t.Errorf("particle %d mutated by Run", i)
		}
	}
}

func TestSimulatorRun_ZeroStepsLeavesStateUnchanged(t *testing.T) {
	s := newTestSimulator(1)
	ps := spreadParticles()

	result, err := s.Run(context.Background(), ps, dynamo.Config{Dt: 0.01, Steps: 0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected 0 steps, got %d", result.StepsTaken)
	}
	if len(result.Samples) != 1 {
		t.Fatalf("expected only the initial sample, got %d", len(result.Samples))
	}
	for i, p := range result.Final().Particles {
		if p != ps[i] {
			t.Errorf("particle %d changed: %+v vs %+v", i, p, ps[i])
		}
	}
	if result.FinalEnergy != result.InitialEnergy {
		t.Errorf("energy changed without stepping")
	}
}

func TestSimulatorRun_SingleParticleAtRest(t *testing.T) {
	s := newTestSimulator(25000)
	ps := []dynamo.Particle{{Charge: 10, Radius: 1, Position: dynamo.Vec2{X: 50, Y: 50}}}

	result, err := s.Run(context.Background(), ps, dynamo.Config{Dt: 0.1, Steps: 20, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, r := range result.Reports {
		if r.Correction.Applied {
			t.Errorf("step %d: normalization applied with zero kinetic energy", r.Step)
		}
		if r.Correction.Factor != 1 {
			t.Errorf("step %d: expected factor 1, got %f", r.Step, r.Correction.Factor)
		}
	}
	final := result.Final().Particles[0]
	if !final.IsValid() || final.Position != (dynamo.Vec2{X: 50, Y: 50}) {
		t.Errorf("particle at rest moved or corrupted: %+v", final)
	}
}

func TestSimulatorRun_PairStartingAtRest(t *testing.T) {
	s := newTestSimulator(1)
	ps := []dynamo.Particle{
		{Charge: 1, Position: dynamo.Vec2{X: 40, Y: 50}},
		{Charge: 1, Position: dynamo.Vec2{X: 60, Y: 50}},
	}
	initial := dynamo.TotalEnergy(physics.NewCoulomb(1), ps)

	result, err := s.Run(context.Background(), ps, dynamo.Config{Dt: 0.1, Steps: 100, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !withinTolerance(result.FinalEnergy, initial) {
		t.Errorf("final energy %f, want %f", result.FinalEnergy, initial)
	}
	final := result.Final().Particles
	if final[0].Position.X >= 40 || final[1].Position.X <= 60 {
		t.Errorf("particles did not repel: %v %v", final[0].Position, final[1].Position)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := newTestSimulator(1)

	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"zero dt", dynamo.Config{Dt: 0, Steps: 10}},
		{"negative dt", dynamo.Config{Dt: -0.1, Steps: 10}},
		{"negative steps", dynamo.Config{Dt: 0.1, Steps: -1}},
		{"negative sample interval", dynamo.Config{Dt: 0.1, Steps: 1, SampleEvery: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), spreadParticles(), tt.cfg)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSimulatorRejectsBadParticles(t *testing.T) {
	s := newTestSimulator(1)

	if _, err := s.Run(context.Background(), nil, dynamo.DefaultConfig()); !errors.Is(err, dynamo.ErrEmptySystem) {
		t.Errorf("expected ErrEmptySystem, got %v", err)
	}

	ps := spreadParticles()
	ps[2].Charge = -1
	if _, err := s.Run(context.Background(), ps, dynamo.DefaultConfig()); !errors.Is(err, dynamo.ErrNonPositiveCharge) {
		t.Errorf("expected ErrNonPositiveCharge, got %v", err)
	}
}

func TestSimulatorContextCancel(t *testing.T) {
	s := newTestSimulator(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, spreadParticles(), dynamo.Config{Dt: 0.01, Steps: 100})
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled error, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected partial result with 0 steps")
	}
}

func TestSimulatorSampling(t *testing.T) {
	s := newTestSimulator(1)
	result, err := s.Run(context.Background(), spreadParticles(), dynamo.Config{Dt: 0.01, Steps: 25, SampleEvery: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	steps := make([]int, 0, len(result.Samples))
	for _, sm := range result.Samples {
		steps = append(steps, sm.Step)
	}
	want := []int{0, 10, 20, 25}
	if len(steps) != len(want) {
		t.Fatalf("expected samples at %v, got %v", want, steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("expected samples at %v, got %v", want, steps)
		}
	}
}

func TestRunWithCallbackStopsEarly(t *testing.T) {
	s := newTestSimulator(1)
	ps := spreadParticles()
	calls := 0

	err := s.RunWithCallback(context.Background(), ps, dynamo.Config{Dt: 0.01, Steps: 100}, func(_ []dynamo.Particle, r dynamo.StepReport) bool {
		calls++
		return r.Step < 5
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 callbacks, got %d", calls)
	}
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                                     { return "count" }
func (c *countingMetric) Observe(_ []dynamo.Particle, _ dynamo.StepReport) { c.n++ }
func (c *countingMetric) Value() float64                                   { return float64(c.n) }
func (c *countingMetric) Reset()                                           { c.n = 0 }

func TestEnsembleRun(t *testing.T) {
	newSim := func() (*dynamo.Simulator, error) {
		s := newTestSimulator(1)
		s.AddMetric(&countingMetric{})
		return s, nil
	}
	spawn := func(seed int64) ([]dynamo.Particle, error) {
		ps := spreadParticles()
		ps[0].Velocity.X += float64(seed)
		return ps, nil
	}

	results, err := dynamo.NewEnsemble(newSim, 4, 1).Run(context.Background(), spawn, dynamo.Config{Dt: 0.01, Steps: 20})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Metrics["count"] != 20 {
			t.Errorf("run %d: expected 20 observations, got %f", i, r.Metrics["count"])
		}
	}
}

func TestEnsembleRunFactoryError(t *testing.T) {
	errBuild := errors.New("no integrator")
	newSim := func() (*dynamo.Simulator, error) { return nil, errBuild }
	spawn := func(seed int64) ([]dynamo.Particle, error) { return spreadParticles(), nil }

	results, err := dynamo.NewEnsemble(newSim, 3, 1).Run(context.Background(), spawn, dynamo.Config{Dt: 0.01, Steps: 5})
	if !errors.Is(err, errBuild) {
		t.Errorf("expected factory error, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %d", len(results))
	}
}
