package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chargesim/internal/analysis"
	"github.com/san-kum/chargesim/internal/automation"
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/experiment"
	"github.com/san-kum/chargesim/internal/export"
	"github.com/san-kum/chargesim/internal/storage"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		name := preset
		if name == "" {
			name = "run"
		}
		runID, err := st.Save(name, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("particles: %d\n", len(result.Final().Particles))
	fmt.Printf("seed: %d\n", cfg.Seed)
	fmt.Printf("total energy: %.6f -> %.6f (drift %.3e)\n", result.InitialEnergy, result.FinalEnergy, result.EnergyDrift)
	fmt.Println("\nmetrics:")
	return printMetrics(result.Metrics)
}

func printMetrics(metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6g\n", name, metrics[name])
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tSTEPS\tDT\tINTEG\tNORM\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%s\t%t\t%.2e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Normalized,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("steps: %d\n\n", len(rows))

	series := []struct {
		caption string
		value   func(storage.EnergyRow) float64
	}{
		{"total energy", func(r storage.EnergyRow) float64 { return r.Total }},
		{"kinetic energy", func(r storage.EnergyRow) float64 { return r.Kinetic }},
		{"potential energy", func(r storage.EnergyRow) float64 { return r.Potential }},
		{"normalization factor", func(r storage.EnergyRow) float64 { return r.Factor }},
	}

	for _, s := range series {
		data := make([]float64, len(rows))
		for i, r := range rows {
			data[i] = s.value(r)
		}
		if isFlat(data) {
			fmt.Printf("%s: constant at %.6f\n\n", s.caption, data[0])
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}

	return nil
}

func isFlat(data []float64) bool {
	for _, v := range data {
		if v != data[0] {
			return false
		}
	}
	return true
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}

	return storage.WriteExport(os.Stdout, storage.NewStoredExportData(meta, samples, energy))
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	var svg string
	if trails {
		svg = export.TrajectoriesToSVG(samples, cfg.World.Width, cfg.World.Height, cfg.Physics.PixelsPerUnit)
	} else {
		final := samples[len(samples)-1]
		svg = export.SceneToSVG(final.Particles, cfg.World.Width, cfg.World.Height, cfg.Physics.PixelsPerUnit)
	}
	if err := writeOutput(outFile, svg); err != nil {
		return err
	}

	if energyOut != "" {
		rows, err := st.LoadEnergy(runID)
		if err != nil {
			return err
		}
		totals := make([]float64, len(rows))
		for i, r := range rows {
			totals[i] = r.Total
		}
		if err := writeOutput(energyOut, export.SeriesToSVG(totals, 800, 200, "#00ffff")); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(path, content string) error {
	if path == "" {
		_, err := fmt.Println(content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return err
	}
	slog.Info("wrote file", "path", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(rows) < 4 {
		return fmt.Errorf("need at least 4 steps for analysis, got %d", len(rows))
	}

	kinetic := make([]float64, len(rows))
	for i, r := range rows {
		kinetic[i] = r.Kinetic
	}

	fmt.Printf("analysis of %s\n\n", meta.ID)
	fmt.Printf("kinetic energy dominant frequency: %.6f\n", analysis.DominantFrequency(kinetic, meta.Dt))

	spectrum := analysis.PowerSpectrum(kinetic, meta.Dt)
	if len(spectrum.Power) > 2 {
		fmt.Println(asciigraph.Plot(spectrum.Power[1:],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy power spectrum"),
		))
	}

	// Rebuild the starting particles from the saved config and seed.
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}
	ps, err := exp.Particles()
	if err != nil {
		return err
	}
	lambda := analysis.Divergence(exp.Simulator(), ps, 0, cfg.Dt, min(meta.Steps, 500), 1e-6)
	fmt.Printf("\ndivergence rate (particle 0): %.6f\n", lambda)
	if lambda > 0 {
		fmt.Println("nearby starts separate: motion is sensitive to initial conditions")
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	xc, err := analysis.ParseCoordinate(xAxis)
	if err != nil {
		return err
	}
	yc, err := analysis.ParseCoordinate(yAxis)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	samples, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(samples, dynamo.ParticleID(particleID), xc, yc)
	if len(portrait.Points) == 0 {
		return fmt.Errorf("particle %d: %w", particleID, dynamo.ErrUnknownParticle)
	}

	fmt.Printf("particle %d: %s vs %s (%d samples)\n\n", particleID, yAxis, xAxis, len(portrait.Points))
	fmt.Print(portrait.ASCII(80, 24))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT\tCHARGE\tK\tDT\tWORLD\tAT REST")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		charge := fmt.Sprintf("%.0f-%.0f", c.Particles.MinCharge, c.Particles.MaxCharge)
		if c.Particles.UniformCharge {
			charge = fmt.Sprintf("%.0f", c.Particles.MinCharge)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%.0f\t%.3f\t%.0fx%.0f\t%t\n",
			name, c.Particles.Count, charge, c.Physics.ForceConstant, c.Dt,
			c.World.Width, c.World.Height, c.Particles.AtRest)
	}
	return w.Flush()
}

func benchSteps(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	counts := []int{10, 50, 100, 200}
	const benchSteps = 200

	fmt.Printf("benchmarking %d steps\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tPARTICLES\tTIME\tSTEPS/SEC")

	for _, name := range registry.ListIntegrators() {
		for _, n := range counts {
			cfg := config.DefaultConfig()
			cfg.Integrator = name
			cfg.Particles.Count = n
			cfg.Steps = benchSteps
			cfg.SampleEvery = 0
			cfg.Seed = 42

			exp := experiment.New(cfg, registry, slog.Default())
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\n",
				name, n, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	fmt.Printf("comparing integrators (dt=%.4f, steps=%d, particles=%d, normalize=%t, seed=%d)\n\n",
		cfg.Dt, cfg.Steps, cfg.Particles.Count, cfg.Normalize, cfg.Seed)
	fmt.Printf("%-12s  %-14s  %-12s  %-12s  %-10s\n", "integrator", "final_energy", "energy_drift", "energy_std", "time_ms")
	fmt.Println(strings.Repeat("-", 68))

	for _, name := range names {
		c := *cfg
		c.Integrator = name

		exp, err := newExperiment(&c)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		fmt.Printf("%-12s  %14.4f  %12.2e  %12.4g  %10.2f\n",
			name, result.FinalEnergy, result.EnergyDrift, result.Metrics["energy_std"], float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry(), slog.Default())
	start := time.Now()
	results, err := exp.Ensemble(cmd.Context(), members)
	if err != nil {
		return err
	}

	fmt.Printf("%d worlds, seeds %d..%d, %v\n\n", members, cfg.Seed, cfg.Seed+int64(members)-1, time.Since(start))

	names := []string{"energy_drift", "energy_std", "kinetic_mean", "correction_mean", "bounces", "momentum", "angular_momentum", "containment"}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, s := range automation.SummarizeEnsemble(results, names) {
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\n", s.Metric, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepPoints,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry(), slog.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tDRIFT\tKINETIC MEAN\tBOUNCES\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.2e\t%.4g\t%.0f\n", r.ParamValue, r.EnergyDrift, r.KineticMean, r.Bounces)
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	g := &automation.GridSearch{Base: cfg, Metric: searchMetric}
	for _, entry := range searchGrid {
		name, list, ok := strings.Cut(entry, "=")
		if !ok {
			return fmt.Errorf("grid %q: expected param=v1,v2,...", entry)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("grid %q: %w", entry, err)
			}
			values = append(values, v)
		}
		g.Params = append(g.Params, name)
		g.Values = append(g.Values, values)
	}

	best, err := g.Run(cmd.Context(), experiment.NewRegistry(), slog.Default())
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d combinations\n", best.Evaluated)
	fmt.Printf("lowest %s: %.6g\n", searchMetric, best.Value)
	for _, name := range g.Params {
		fmt.Printf("  %s = %g\n", name, best.Params[name])
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	outcomes, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), st, slog.Default())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRUN ID\tSTEPS\tFINAL ENERGY\tDRIFT")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%.2e\n", o.Name, o.RunID, o.Result.StepsTaken, o.Result.FinalEnergy, o.Result.EnergyDrift)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
