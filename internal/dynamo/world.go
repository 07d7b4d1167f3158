package dynamo

import "fmt"

// World owns a particle arena and the energy snapshot threaded between
// steps. It is the surface a tick loop and a renderer consume: Step mutates,
// everything else reads. World is not safe for concurrent use; a renderer
// must only read between steps.
type World struct {
	sim       *Simulator
	initial   []Particle
	particles []Particle
	dt        float64
	energy    float64
	steps     int
	last      StepReport
}

// NewWorld copies particles into a new arena and captures the starting energy.
func NewWorld(sim *Simulator, particles []Particle, dt float64) (*World, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f: %w", dt, ErrParameterBounds)
	}
	if err := ValidateAll(particles); err != nil {
		return nil, err
	}
	w := &World{
		sim:     sim,
		initial: Clone(particles),
		dt:      dt,
	}
	w.Reset()
	return w, nil
}

// Step advances the world by one tick.
func (w *World) Step() {
	var report StepReport
	w.energy, report = w.sim.Advance(w.particles, w.dt, w.energy)
	w.steps++
	report.Step = w.steps
	report.Time = w.Time()
	w.last = report

	for _, m := range w.sim.metrics {
		m.Observe(w.particles, report)
	}
	for _, obs := range w.sim.observers {
		obs.OnStep(w.particles, report)
	}
}

// TotalEnergy returns the energy snapshot the next step will restore.
func (w *World) TotalEnergy() float64 { return w.energy }

// MeasuredEnergy recomputes kinetic plus potential energy from current state.
func (w *World) MeasuredEnergy() float64 { return w.sim.Energy(w.particles) }

func (w *World) Len() int { return len(w.particles) }

func (w *World) Particle(id ParticleID) (Particle, bool) {
	if int(id) < 0 || int(id) >= len(w.particles) {
		return Particle{}, false
	}
	return w.particles[id], true
}

// Snapshot returns a copy of every particle, safe to keep across steps.
func (w *World) Snapshot() []Particle { return Clone(w.particles) }

func (w *World) Steps() int             { return w.steps }
func (w *World) Time() float64          { return float64(w.steps) * w.dt }
func (w *World) Dt() float64            { return w.dt }
func (w *World) LastReport() StepReport { return w.last }
func (w *World) Simulator() *Simulator  { return w.sim }

// Pin fixes a particle at pos with zero velocity. The energy snapshot is
// re-captured, so work done by dragging a particle becomes the new reference.
func (w *World) Pin(id ParticleID, pos Vec2) error {
	if int(id) < 0 || int(id) >= len(w.particles) {
		return fmt.Errorf("pin %d: %w", id, ErrUnknownParticle)
	}
	if !pos.IsValid() {
		return fmt.Errorf("pin %d at %v: %w", id, pos, ErrParameterBounds)
	}
	p := &w.particles[id]
	p.Fixed = true
	p.Position = pos
	p.Velocity = Vec2{}
	w.energy = w.MeasuredEnergy()
	return nil
}

// Release lets a pinned particle move again.
func (w *World) Release(id ParticleID) error {
	if int(id) < 0 || int(id) >= len(w.particles) {
		return fmt.Errorf("release %d: %w", id, ErrUnknownParticle)
	}
	w.particles[id].Fixed = false
	return nil
}

// Reset restores the particles given to NewWorld, confines them to the
// walls, and re-captures the energy.
func (w *World) Reset() {
	w.particles = Clone(w.initial)
	w.sim.Confine(w.particles)
	w.energy = w.MeasuredEnergy()
	w.steps = 0
	w.last = StepReport{}
}
