package automation

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/experiment"
)

// GridSearch tries every combination of parameter values over a base config
// and keeps the one with the lowest value of a metric.
type GridSearch struct {
	Base   *config.Config
	Params []string
	Values [][]float64
	Metric string
}

// SearchResult is the best combination found. Evaluated counts the
// combinations that ran to completion.
type SearchResult struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
}

func (g *GridSearch) Run(ctx context.Context, registry *experiment.Registry, logger *slog.Logger) (*SearchResult, error) {
	if len(g.Params) == 0 || len(g.Params) != len(g.Values) {
		return nil, fmt.Errorf("grid search needs one value list per parameter, got %d params and %d lists", len(g.Params), len(g.Values))
	}
	for _, name := range g.Params {
		if _, ok := sweepSetters[name]; !ok {
			return nil, fmt.Errorf("parameter %s is not sweepable", name)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	best := &SearchResult{Value: math.Inf(1)}
	err := g.search(ctx, 0, map[string]float64{}, registry, logger, best)
	if err != nil {
		return nil, err
	}
	if best.Params == nil {
		return nil, fmt.Errorf("no combination produced metric %s", g.Metric)
	}
	return best, nil
}

func (g *GridSearch) search(ctx context.Context, depth int, current map[string]float64, registry *experiment.Registry, logger *slog.Logger, best *SearchResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.Params) {
		cfg := *g.Base
		for name, v := range current {
			sweepSetters[name](&cfg, v)
		}

		exp := experiment.New(&cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			logger.Debug("skipping combination", "params", current, "error", err)
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			logger.Debug("skipping combination", "params", current, "error", err)
			return nil
		}

		val, ok := result.Metrics[g.Metric]
		if !ok {
			return nil
		}
		best.Evaluated++
		if val < best.Value {
			best.Value = val
			best.Params = maps.Clone(current)
		}
		return nil
	}

	name := g.Params[depth]
	for _, v := range g.Values[depth] {
		next := maps.Clone(current)
		next[name] = v
		if err := g.search(ctx, depth+1, next, registry, logger, best); err != nil {
			return err
		}
	}
	return nil
}
