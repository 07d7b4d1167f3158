package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/experiment"
	"github.com/san-kum/chargesim/internal/storage"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset and overrides any field that is set.
type ScenarioRun struct {
	Preset        string   `yaml:"preset"`
	Integrator    string   `yaml:"integrator"`
	Dt            float64  `yaml:"dt"`
	Steps         int      `yaml:"steps"`
	Seed          int64    `yaml:"seed"`
	Count         int      `yaml:"count"`
	ForceConstant float64  `yaml:"force_constant"`
	MaxVelocity   *float64 `yaml:"max_initial_velocity"`
	Normalize     *bool    `yaml:"normalize"`
	SaveAs        string   `yaml:"save_as"`
}

// Outcome is one finished scenario run.
type Outcome struct {
	Name   string
	RunID  string
	Result *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}

	return &scenario, nil
}

// Config resolves the run's preset and overrides into a full config.
func (r ScenarioRun) Config() (*config.Config, error) {
	preset := r.Preset
	if preset == "" {
		preset = "default"
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", preset)
	}

	if r.Integrator != "" {
		cfg.Integrator = r.Integrator
	}
	if r.Dt != 0 {
		cfg.Dt = r.Dt
	}
	if r.Steps != 0 {
		cfg.Steps = r.Steps
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}
	if r.Count != 0 {
		cfg.Particles.Count = r.Count
	}
	if r.ForceConstant != 0 {
		cfg.Physics.ForceConstant = r.ForceConstant
	}
	if r.MaxVelocity != nil {
		cfg.Particles.MaxVelocity = *r.MaxVelocity
	}
	if r.Normalize != nil {
		cfg.Normalize = *r.Normalize
	}
	return cfg, cfg.Validate()
}

func (r ScenarioRun) name(i int) string {
	if r.SaveAs != "" {
		return r.SaveAs
	}
	if r.Preset != "" {
		return fmt.Sprintf("%s_%d", r.Preset, i+1)
	}
	return fmt.Sprintf("run_%d", i+1)
}

// RunScenario executes every run in order. Each run is saved when store is
// non-nil. Outcomes completed before a failure are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, logger *slog.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = slog.Default()
	}
	outcomes := make([]Outcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		name := run.name(i)
		logger.Info("scenario run", "scenario", scenario.Name, "run", i+1, "of", len(scenario.Runs), "name", name)

		cfg, err := run.Config()
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return outcomes, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		out := Outcome{Name: name, Result: result}
		if store != nil {
			out.RunID, err = store.Save(name, cfg, result)
			if err != nil {
				return outcomes, fmt.Errorf("run %d save: %w", i+1, err)
			}
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// Sweepable config fields.
var sweepSetters = map[string]func(*config.Config, float64){
	"force_constant": func(c *config.Config, v float64) { c.Physics.ForceConstant = v },
	"dt":             func(c *config.Config, v float64) { c.Dt = v },
	"max_velocity":   func(c *config.Config, v float64) { c.Particles.MaxVelocity = v },
	"count":          func(c *config.Config, v float64) { c.Particles.Count = int(v) },
}

// ParameterSweep runs the base config across evenly spaced values of one parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue  float64
	EnergyDrift float64
	KineticMean float64
	Bounces     float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	set, ok := sweepSetters[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("parameter %s is not sweepable", sweep.ParamName)
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d: %w", sweep.NumSteps, dynamo.ErrParameterBounds)
	}
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *sweep.Base
		set(&cfg, paramVal)

		exp := experiment.New(&cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			EnergyDrift: result.Metrics["energy_drift"],
			KineticMean: result.Metrics["kinetic_mean"],
			Bounces:     result.Metrics["bounces"],
		})
		logger.Debug("sweep point", "param", sweep.ParamName, "value", paramVal, "drift", result.Metrics["energy_drift"])
	}

	return results, nil
}

// EnsembleStats summarizes one metric across ensemble members.
type EnsembleStats struct {
	Metric string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// SummarizeEnsemble computes per-metric statistics across results, in the
// order names are given.
func SummarizeEnsemble(results []*dynamo.Result, names []string) []EnsembleStats {
	summary := make([]EnsembleStats, 0, len(names))
	values := make([]float64, len(results))

	for _, name := range names {
		for i, r := range results {
			values[i] = r.Metrics[name]
		}
		s := EnsembleStats{Metric: name}
		if len(values) > 0 {
			s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
			if len(values) < 2 {
				s.StdDev = 0
			}
			s.Min, s.Max = values[0], values[0]
			for _, v := range values {
				s.Min, s.Max = min(s.Min, v), max(s.Max, v)
			}
		}
		summary = append(summary, s)
	}

	return summary
}
