package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Simulator runs the per-tick pipeline: forces, integration, boundary
// reflection, energy normalization. It holds no particle state of its own;
// Advance is a function of (particles, dt, previous energy).
type Simulator struct {
	field      ForceField
	integrator Integrator
	boundary   Boundary
	normalizer Normalizer
	metrics    []Metric
	observers  []Observer
	logger     *slog.Logger
}

type Option func(*Simulator)

// WithBoundary sets the wall resolver. Without one particles are unconfined.
func WithBoundary(b Boundary) Option {
	return func(s *Simulator) { s.boundary = b }
}

// WithNormalizer sets the energy corrector. Without one energy drifts freely.
func WithNormalizer(n Normalizer) Option {
	return func(s *Simulator) { s.normalizer = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func New(field ForceField, integrator Integrator, opts ...Option) *Simulator {
	s := &Simulator{
		field:      field,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Field() ForceField { return s.field }

// Energy measures the current total energy of ps.
func (s *Simulator) Energy(ps []Particle) float64 {
	return TotalEnergy(s.field, ps)
}

// Confine applies the walls to ps once, outside any step, and returns the
// number of reflections. A particle that starts overlapping a wall would
// otherwise be pushed inward on step 1, changing the potential energy
// after the reference has been taken.
func (s *Simulator) Confine(ps []Particle) int {
	if s.boundary == nil {
		return 0
	}
	return s.boundary.Resolve(ps)
}

// Advance performs one complete step on ps in place and returns the energy
// snapshot for the next step. Forces are evaluated on the positions ps holds
// on entry; no particle observes another's update mid-step.
func (s *Simulator) Advance(ps []Particle, dt, previous float64) (float64, StepReport) {
	s.integrator.Step(s.field, ps, dt)

	bounces := 0
	if s.boundary != nil {
		bounces = s.boundary.Resolve(ps)
	}

	var corr Correction
	if s.normalizer != nil {
		corr = s.normalizer.Normalize(s.field, ps, previous)
		switch {
		case corr.Clamped:
			s.logger.Debug("energy target unreachable, velocities zeroed", "correction", corr)
		case !corr.Applied:
			s.logger.Debug("energy normalization skipped", "correction", corr)
		}
	} else {
		e := s.Energy(ps)
		corr = Correction{Before: previous, After: e, Factor: 1, Energy: e}
	}

	kinetic := TotalKinetic(ps)
	report := StepReport{
		Bounces:    bounces,
		Kinetic:    kinetic,
		Potential:  corr.Energy - kinetic,
		Correction: corr,
	}
	return corr.Energy, report
}

// Run steps a copy of particles cfg.Steps times. The copy is confined to the
// walls before the starting energy is measured. The input slice is not modified.
func (s *Simulator) Run(ctx context.Context, particles []Particle, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(particles) == 0 {
		return nil, ErrEmptySystem
	}
	if err := ValidateAll(particles); err != nil {
		return nil, err
	}

	ps := Clone(particles)
	if n := s.Confine(ps); n > 0 {
		s.logger.Debug("particles moved inside walls before first step", "bounces", n)
	}
	energy := s.Energy(ps)

	result := &Result{
		Samples:       make([]Sample, 0, sampleCapacity(cfg)),
		Reports:       make([]StepReport, 0, cfg.Steps),
		InitialEnergy: energy,
		Metrics:       make(map[string]float64),
		Errors:        make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	result.Samples = append(result.Samples, Sample{Step: 0, Time: t, Particles: Clone(ps)})

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, ps)
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		var report StepReport
		energy, report = s.Advance(ps, cfg.Dt, energy)
		t += cfg.Dt
		report.Step = i
		report.Time = t

		if cfg.ValidateState {
			if err := ValidateAll(ps); err != nil {
				result.Errors = append(result.Errors, &SimulationError{Step: i, Time: t, Wrapped: err})
				break
			}
		}

		result.StepsTaken++
		result.Reports = append(result.Reports, report)

		for _, m := range s.metrics {
			m.Observe(ps, report)
		}
		for _, obs := range s.observers {
			obs.OnStep(ps, report)
		}

		if (cfg.SampleEvery > 0 && i%cfg.SampleEvery == 0) || i == cfg.Steps {
			result.Samples = append(result.Samples, Sample{Step: i, Time: t, Particles: Clone(ps)})
		}
	}

	s.finish(result, ps)

	if len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	return result, nil
}

func (s *Simulator) finish(result *Result, ps []Particle) {
	result.FinalEnergy = s.Energy(ps)
	if result.InitialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy-result.InitialEnergy) / math.Abs(result.InitialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback steps ps in place until cfg.Steps is reached, the callback
// returns false, or ctx is done.
func (s *Simulator) RunWithCallback(ctx context.Context, ps []Particle, cfg Config, callback func([]Particle, StepReport) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ValidateAll(ps); err != nil {
		return err
	}

	energy := s.Energy(ps)
	t := 0.0

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		var report StepReport
		energy, report = s.Advance(ps, cfg.Dt, energy)
		t += cfg.Dt
		report.Step = i
		report.Time = t

		if cfg.ValidateState {
			if err := ValidateAll(ps); err != nil {
				return &SimulationError{Step: i, Time: t, Wrapped: err}
			}
		}

		if !callback(ps, report) {
			return nil
		}
	}

	return nil
}

func sampleCapacity(cfg Config) int {
	if cfg.SampleEvery <= 0 {
		return 2
	}
	return cfg.Steps/cfg.SampleEvery + 2
}
