package metrics

import (
	"math"

	"github.com/san-kum/chargesim/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// EnergyDrift tracks the largest relative deviation of the post-step total
// energy from the energy held before the first observed step.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(ps []dynamo.Particle, r dynamo.StepReport) {
	if e.samples == 0 {
		e.initialEnergy = r.Correction.Before
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(r.Energy()-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// series collects one float per step for the stat-based metrics below.
type series struct {
	name    string
	values  []float64
	extract func(ps []dynamo.Particle, r dynamo.StepReport) float64
	reduce  func(values []float64) float64
}

func (s *series) Name() string { return s.name }

func (s *series) Observe(ps []dynamo.Particle, r dynamo.StepReport) {
	s.values = append(s.values, s.extract(ps, r))
}

func (s *series) Value() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.reduce(s.values)
}

func (s *series) Reset() { s.values = s.values[:0] }

// NewEnergySpread reports the standard deviation of total energy across steps.
func NewEnergySpread() dynamo.Metric {
	return &series{
		name:    "energy_std",
		extract: func(_ []dynamo.Particle, r dynamo.StepReport) float64 { return r.Energy() },
		reduce: func(v []float64) float64 {
			if len(v) < 2 {
				return 0
			}
			return stat.StdDev(v, nil)
		},
	}
}

// NewKineticMean reports the mean total kinetic energy across steps.
func NewKineticMean() dynamo.Metric {
	return &series{
		name:    "kinetic_mean",
		extract: func(_ []dynamo.Particle, r dynamo.StepReport) float64 { return r.Kinetic },
		reduce:  func(v []float64) float64 { return stat.Mean(v, nil) },
	}
}

// NewCorrectionMean reports the mean |f-1| of applied normalization factors;
// a measure of how hard the normalizer is working.
func NewCorrectionMean() dynamo.Metric {
	return &series{
		name: "correction_mean",
		extract: func(_ []dynamo.Particle, r dynamo.StepReport) float64 {
			if !r.Correction.Applied {
				return 0
			}
			return math.Abs(r.Correction.Factor - 1)
		},
		reduce: func(v []float64) float64 { return stat.Mean(v, nil) },
	}
}
