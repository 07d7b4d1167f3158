package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	configFile     = "config.yaml"
	trajectoryFile = "trajectory.csv"
	energyFile     = "energy.csv"
)

// Store keeps each run in its own directory under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	Dt            float64            `json:"dt"`
	Steps         int                `json:"steps"`
	Integrator    string             `json:"integrator"`
	Particles     int                `json:"particles"`
	Normalized    bool               `json:"normalized"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	EnergyDrift   float64            `json:"energy_drift"`
	Metrics       map[string]float64 `json:"metrics"`
}

// TrajectoryRow is one particle at one sampled step.
type TrajectoryRow struct {
	Step   int     `csv:"step"`
	Time   float64 `csv:"time"`
	ID     int     `csv:"id"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	VX     float64 `csv:"vx"`
	VY     float64 `csv:"vy"`
	Charge float64 `csv:"charge"`
	Radius float64 `csv:"radius"`
	Color  string  `csv:"color"`
	Fixed  bool    `csv:"fixed"`
}

// EnergyRow is the energy bookkeeping of one completed step.
type EnergyRow struct {
	Step      int     `csv:"step"`
	Time      float64 `csv:"time"`
	Kinetic   float64 `csv:"kinetic"`
	Potential float64 `csv:"potential"`
	Total     float64 `csv:"total"`
	Factor    float64 `csv:"factor"`
	Applied   bool    `csv:"applied"`
	Clamped   bool    `csv:"clamped"`
	Bounces   int     `csv:"bounces"`
}

// Save writes metadata, the config the run was built from, sampled
// trajectories and per-step energy. It returns the new run ID.
func (s *Store) Save(name string, cfg *config.Config, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Name:          name,
		Timestamp:     now,
		Seed:          cfg.Seed,
		Dt:            cfg.Dt,
		Steps:         result.StepsTaken,
		Integrator:    cfg.Integrator,
		Particles:     len(result.Final().Particles),
		Normalized:    cfg.Normalize,
		InitialEnergy: result.InitialEnergy,
		FinalEnergy:   result.FinalEnergy,
		EnergyDrift:   result.EnergyDrift,
		Metrics:       result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	if err := writeCSV(filepath.Join(runDir, trajectoryFile), TrajectoryRows(result.Samples)); err != nil {
		return "", fmt.Errorf("writing trajectory: %w", err)
	}
	if err := writeCSV(filepath.Join(runDir, energyFile), EnergyRows(result.Reports)); err != nil {
		return "", fmt.Errorf("writing energy: %w", err)
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig reads back the config a run was saved with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadTrajectory rebuilds the sampled snapshots of a run.
func (s *Store) LoadTrajectory(runID string) ([]dynamo.Sample, error) {
	var rows []TrajectoryRow
	if err := readCSV(filepath.Join(s.baseDir, runID, trajectoryFile), &rows); err != nil {
		return nil, err
	}
	return Samples(rows), nil
}

func (s *Store) LoadEnergy(runID string) ([]EnergyRow, error) {
	var rows []EnergyRow
	if err := readCSV(filepath.Join(s.baseDir, runID, energyFile), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func TrajectoryRows(samples []dynamo.Sample) []TrajectoryRow {
	rows := make([]TrajectoryRow, 0)
	for _, s := range samples {
		for id, p := range s.Particles {
			rows = append(rows, TrajectoryRow{
				Step:   s.Step,
				Time:   s.Time,
				ID:     id,
				X:      p.Position.X,
				Y:      p.Position.Y,
				VX:     p.Velocity.X,
				VY:     p.Velocity.Y,
				Charge: p.Charge,
				Radius: p.Radius,
				Color:  p.Color,
				Fixed:  p.Fixed,
			})
		}
	}
	return rows
}

// Samples groups rows by step, in file order. Row IDs index the particle slice.
func Samples(rows []TrajectoryRow) []dynamo.Sample {
	samples := make([]dynamo.Sample, 0)
	for _, r := range rows {
		if len(samples) == 0 || samples[len(samples)-1].Step != r.Step {
			samples = append(samples, dynamo.Sample{Step: r.Step, Time: r.Time})
		}
		s := &samples[len(samples)-1]
		for len(s.Particles) <= r.ID {
			s.Particles = append(s.Particles, dynamo.Particle{})
		}
		s.Particles[r.ID] = dynamo.Particle{
			Charge:   r.Charge,
			Radius:   r.Radius,
			Position: dynamo.Vec2{X: r.X, Y: r.Y},
			Velocity: dynamo.Vec2{X: r.VX, Y: r.VY},
			Color:    r.Color,
			Fixed:    r.Fixed,
		}
	}
	return samples
}

func EnergyRows(reports []dynamo.StepReport) []EnergyRow {
	rows := make([]EnergyRow, len(reports))
	for i, r := range reports {
		rows[i] = EnergyRow{
			Step:      r.Step,
			Time:      r.Time,
			Kinetic:   r.Kinetic,
			Potential: r.Potential,
			Total:     r.Energy(),
			Factor:    r.Correction.Factor,
			Applied:   r.Correction.Applied,
			Clamped:   r.Correction.Clamped,
			Bounces:   r.Bounces,
		}
	}
	return rows
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(rows, f)
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}
