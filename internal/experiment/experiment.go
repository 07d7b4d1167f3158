package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
	"github.com/san-kum/chargesim/internal/spawn"
)

// Experiment wires a config into a simulator, its field and walls, and a
// seeded particle set.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	field     *physics.Coulomb
	box       *physics.Box
	simulator *dynamo.Simulator
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// Setup validates the config and builds the simulator with the default metrics.
func (e *Experiment) Setup() error {
	sim, field, box, err := e.build()
	if err != nil {
		return err
	}
	e.simulator, e.field, e.box = sim, field, box
	return nil
}

// build assembles an independent simulator with its own field, walls and
// metrics. Ensemble members each need their own.
func (e *Experiment) build() (*dynamo.Simulator, *physics.Coulomb, *physics.Box, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, nil, nil, err
	}

	field := &physics.Coulomb{K: e.cfg.Physics.ForceConstant, MinDistance: e.cfg.Physics.MinDistance}
	box := physics.NewBox(e.cfg.World.Width, e.cfg.World.Height, e.cfg.Physics.PixelsPerUnit)

	opts := []dynamo.Option{
		dynamo.WithBoundary(box),
		dynamo.WithLogger(e.logger),
	}
	if e.cfg.Normalize {
		opts = append(opts, dynamo.WithNormalizer(physics.NewNormalizer()))
	}

	sim := dynamo.New(field, integ, opts...)
	for _, m := range e.registry.DefaultMetrics(field, box) {
		sim.AddMetric(m)
	}
	return sim, field, box, nil
}

// Particles spawns the starting set for the config's seed.
func (e *Experiment) Particles() ([]dynamo.Particle, error) {
	return spawn.Random(e.cfg, rand.New(rand.NewSource(e.cfg.Seed)))
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	ps, err := e.Particles()
	if err != nil {
		return nil, err
	}

	e.logger.Info("starting run",
		"integrator", e.cfg.Integrator,
		"particles", len(ps),
		"steps", e.cfg.Steps,
		"dt", e.cfg.Dt,
		"seed", e.cfg.Seed,
		"normalize", e.cfg.Normalize,
	)

	result, err := e.simulator.Run(ctx, ps, e.cfg.SimConfig())
	if result != nil {
		e.logger.Info("run finished",
			"steps", result.StepsTaken,
			"initial_energy", result.InitialEnergy,
			"final_energy", result.FinalEnergy,
			"drift", result.EnergyDrift,
		)
	}
	return result, err
}

// World builds a steppable world for live mode.
func (e *Experiment) World() (*dynamo.World, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	ps, err := e.Particles()
	if err != nil {
		return nil, err
	}
	return dynamo.NewWorld(e.simulator, ps, e.cfg.Dt)
}

// Ensemble runs n members seeded from the config's seed onward.
func (e *Experiment) Ensemble(ctx context.Context, n int) ([]*dynamo.Result, error) {
	newSim := func() (*dynamo.Simulator, error) {
		sim, _, _, err := e.build()
		return sim, err
	}
	e.logger.Info("starting ensemble", "members", n, "seed", e.cfg.Seed)
	return dynamo.NewEnsemble(newSim, n, e.cfg.Seed).Run(ctx, spawn.FromSeed(e.cfg), e.cfg.SimConfig())
}

func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }
func (e *Experiment) Field() *physics.Coulomb      { return e.field }
func (e *Experiment) Box() *physics.Box            { return e.box }
