package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/chargesim/internal/dynamo"
)

type ExportData struct {
	Name          string             `json:"name"`
	Integrator    string             `json:"integrator"`
	Dt            float64            `json:"dt"`
	Steps         int                `json:"steps"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	EnergyDrift   float64            `json:"energy_drift"`
	Samples       []ExportSample     `json:"samples"`
	Energy        []EnergyRow        `json:"energy"`
	Metrics       map[string]float64 `json:"metrics"`
}

type ExportSample struct {
	Step      int              `json:"step"`
	Time      float64          `json:"time"`
	Particles []ExportParticle `json:"particles"`
}

type ExportParticle struct {
	Charge float64 `json:"charge"`
	Radius float64 `json:"radius"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Color  string  `json:"color,omitempty"`
	Fixed  bool    `json:"fixed,omitempty"`
}

func NewExportData(name, integrator string, dt float64, result *dynamo.Result) ExportData {
	return ExportData{
		Name:          name,
		Integrator:    integrator,
		Dt:            dt,
		Steps:         result.StepsTaken,
		InitialEnergy: result.InitialEnergy,
		FinalEnergy:   result.FinalEnergy,
		EnergyDrift:   result.EnergyDrift,
		Samples:       exportSamples(result.Samples),
		Energy:        EnergyRows(result.Reports),
		Metrics:       result.Metrics,
	}
}

// NewStoredExportData rebuilds export data from a saved run.
func NewStoredExportData(meta *RunMetadata, samples []dynamo.Sample, energy []EnergyRow) ExportData {
	return ExportData{
		Name:          meta.Name,
		Integrator:    meta.Integrator,
		Dt:            meta.Dt,
		Steps:         meta.Steps,
		InitialEnergy: meta.InitialEnergy,
		FinalEnergy:   meta.FinalEnergy,
		EnergyDrift:   meta.EnergyDrift,
		Samples:       exportSamples(samples),
		Energy:        energy,
		Metrics:       meta.Metrics,
	}
}

func exportSamples(samples []dynamo.Sample) []ExportSample {
	out := make([]ExportSample, len(samples))
	for i, s := range samples {
		es := ExportSample{Step: s.Step, Time: s.Time, Particles: make([]ExportParticle, len(s.Particles))}
		for j, p := range s.Particles {
			es.Particles[j] = ExportParticle{
				Charge: p.Charge,
				Radius: p.Radius,
				X:      p.Position.X,
				Y:      p.Position.Y,
				VX:     p.Velocity.X,
				VY:     p.Velocity.Y,
				Color:  p.Color,
				Fixed:  p.Fixed,
			}
		}
		out[i] = es
	}
	return out
}

// ExportJSON writes result as indented JSON to w.
func ExportJSON(w io.Writer, name, integrator string, dt float64, result *dynamo.Result) error {
	return WriteExport(w, NewExportData(name, integrator, dt, result))
}

func WriteExport(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes sampled trajectories as CSV to w.
func ExportCSV(w io.Writer, samples []dynamo.Sample) error {
	return gocsv.Marshal(TrajectoryRows(samples), w)
}
