package dynamo

import (
	"fmt"
	"log/slog"
)

// ForceField computes pairwise interactions over a particle arena.
type ForceField interface {
	// Forces writes the net force on each particle into out, growing it if
	// needed, and returns it. out[i] belongs to ParticleID(i).
	Forces(ps []Particle, out []Vec2) []Vec2
	// PotentialEnergy sums the pairwise potential over all unordered pairs.
	PotentialEnergy(ps []Particle) float64
}

// Integrator advances velocities and positions by one step in place.
type Integrator interface {
	Step(field ForceField, ps []Particle, dt float64)
}

// Boundary confines particles and returns the number of wall reflections.
type Boundary interface {
	Resolve(ps []Particle) int
}

// Normalizer rescales velocities so total energy returns to target.
type Normalizer interface {
	Normalize(field ForceField, ps []Particle, target float64) Correction
}

// Correction describes one energy normalization.
type Correction struct {
	Before  float64 // snapshot held before the step
	After   float64 // energy measured after integration and collision
	Kinetic float64 // kinetic energy before rescaling
	Factor  float64 // applied velocity scale; 1 when skipped
	Applied bool
	Clamped bool    // target unreachable, velocities zeroed
	Energy  float64 // measured total after rescaling
}

func (c Correction) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("before", c.Before),
		slog.Float64("after", c.After),
		slog.Float64("kinetic", c.Kinetic),
		slog.Float64("factor", c.Factor),
		slog.Bool("applied", c.Applied),
		slog.Bool("clamped", c.Clamped),
	)
}

// StepReport summarizes a completed step.
type StepReport struct {
	Step       int
	Time       float64
	Bounces    int
	Kinetic    float64
	Potential  float64
	Correction Correction
}

// Energy is the total held after the step.
func (r StepReport) Energy() float64 { return r.Kinetic + r.Potential }

func (r StepReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", r.Step),
		slog.Float64("t", r.Time),
		slog.Int("bounces", r.Bounces),
		slog.Float64("kinetic", r.Kinetic),
		slog.Float64("potential", r.Potential),
		slog.Any("correction", r.Correction),
	)
}

type Metric interface {
	Name() string
	Observe(ps []Particle, r StepReport)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(ps []Particle, r StepReport)
}

type Config struct {
	Dt            float64
	Steps         int
	SampleEvery   int // keep every n-th snapshot; 0 keeps none but the first and last
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		Steps:         1000,
		SampleEvery:   10,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, ErrParameterBounds)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d: %w", c.Steps, ErrParameterBounds)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d: %w", c.SampleEvery, ErrParameterBounds)
	}
	return nil
}

// Sample is a snapshot of every particle at a step boundary.
type Sample struct {
	Step      int
	Time      float64
	Particles []Particle
}

type Result struct {
	Samples       []Sample
	Reports       []StepReport
	InitialEnergy float64
	FinalEnergy   float64
	EnergyDrift   float64
	Metrics       map[string]float64
	StepsTaken    int
	Errors        []error
}

// Final returns the last recorded sample.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
