package dynamo

import (
	"context"
	"sync"
)

// Spawner builds the starting particles for one ensemble member.
type Spawner func(seed int64) ([]Particle, error)

// SimulatorFactory builds a fresh simulator for one ensemble member.
type SimulatorFactory func() (*Simulator, error)

// Ensemble runs independently seeded worlds side by side. Each member is
// still stepped by a single goroutine; members share no particle state.
type Ensemble struct {
	newSim    SimulatorFactory
	numRuns   int
	seedStart int64
}

// NewEnsemble takes a simulator factory so every member gets its own
// integrator scratch buffers and metrics.
func NewEnsemble(newSim SimulatorFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{newSim: newSim, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, spawn Spawner, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			ps, err := spawn(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			sim, err := e.newSim()
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = sim.Run(ctx, ps, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
