package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/experiment"
	"github.com/san-kum/chargesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool

	configFile    string
	preset        string
	integrator    string
	dt            float64
	steps         int
	sampleEvery   int
	seed          int64
	count         int
	forceConstant float64
	noNormalize   bool
	atRest        bool

	noSave  bool
	theme   string
	members int

	outFile   string
	energyOut string
	trails    bool

	particleID int
	xAxis      string
	yAxis      string

	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int

	searchGrid   []string
	searchMetric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chargesim",
		Short: "charged particle simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chargesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render the final state of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "svg output file (default stdout)")
	snapshotCmd.Flags().StringVar(&energyOut, "energy-out", "", "also write the total energy series as svg")
	snapshotCmd.Flags().BoolVar(&trails, "trails", false, "draw sampled trajectories")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral and divergence analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one particle",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&particleID, "id", 0, "particle id")
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "x", "horizontal coordinate (x, y, vx, vy)")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "vx", "vertical coordinate (x, y, vx, vy)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput",
		RunE:  benchSteps,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same particles",
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independently seeded worlds concurrently",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&members, "members", 8, "number of worlds")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter across a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "force_constant", "parameter (force_constant, dt, max_velocity, count)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 5000, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 50000, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search parameters for the lowest metric value",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchGrid, "grid", []string{"dt=0.05,0.1,0.2"}, "param=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "energy_drift", "metric to minimize")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every entry of a yaml scenario and save each",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		snapshotCmd, analyzeCmd, phaseCmd, presetsCmd, benchCmd, compareCmd, ensembleCmd, sweepCmd, searchCmd, scenarioCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	f.IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "keep every n-th snapshot")
	f.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	f.IntVar(&count, "count", config.DefaultCount, "number of particles")
	f.Float64Var(&forceConstant, "force-constant", config.DefaultForceConstant, "force constant K")
	f.BoolVar(&noNormalize, "no-normalize", false, "let energy drift")
	f.BoolVar(&atRest, "at-rest", false, "start every particle at rest")
}

// resolveConfig builds the run config: defaults or a preset, the config
// file over that, then any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("count") {
		cfg.Particles.Count = count
	}
	if flags.Changed("force-constant") {
		cfg.Physics.ForceConstant = forceConstant
	}
	if flags.Changed("no-normalize") {
		cfg.Normalize = !noNormalize
	}
	if flags.Changed("at-rest") {
		cfg.Particles.AtRest = atRest
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return cfg, cfg.Validate()
}

func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// newExperiment builds and sets up an experiment from cfg.
func newExperiment(cfg *config.Config) (*experiment.Experiment, error) {
	exp := experiment.New(cfg, experiment.NewRegistry(), slog.Default())
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func runPicker() error {
	start := func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		cfg.Seed = time.Now().UnixNano()
		return liveModel(cfg, name)
	}
	// The live view owns the terminal; keep logs out of it.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := tea.NewProgram(viz.NewPicker(config.ListPresets(), start), tea.WithAltScreen()).Run()
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = "chargesim"
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m, err := liveModel(cfg, name)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m.WithTheme(theme), tea.WithAltScreen()).Run()
	return err
}

func liveModel(cfg *config.Config, title string) (viz.Model, error) {
	exp, err := newExperiment(cfg)
	if err != nil {
		return viz.Model{}, err
	}
	world, err := exp.World()
	if err != nil {
		return viz.Model{}, err
	}
	return viz.NewModel(world, cfg, title), nil
}
