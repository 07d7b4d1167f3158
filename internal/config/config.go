package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/chargesim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIntegrator    = "symplectic"
	DefaultDt            = 0.1
	DefaultSteps         = 2000
	DefaultSampleEvery   = 10
	DefaultForceConstant = 25000.0
	DefaultPixelsPerUnit = 10.0
	DefaultMinDistance   = 1e-3
	DefaultWidth         = 800.0
	DefaultHeight        = 600.0
	DefaultCount         = 10
	DefaultMinCharge     = 10.0
	DefaultMaxCharge     = 30.0
	DefaultMaxVelocity   = 1.0
	DefaultSleepMillis   = 22
	DefaultTrailLength   = 30
)

type Config struct {
	Integrator  string          `yaml:"integrator"`
	Dt          float64         `yaml:"dt"`
	Steps       int             `yaml:"steps"`
	SampleEvery int             `yaml:"sample_every"`
	Seed        int64           `yaml:"seed"`
	Normalize   bool            `yaml:"normalize"`
	Physics     PhysicsConfig   `yaml:"physics"`
	World       WorldConfig     `yaml:"world"`
	Particles   ParticlesConfig `yaml:"particles"`
	Display     DisplayConfig   `yaml:"display"`
}

type PhysicsConfig struct {
	ForceConstant float64 `yaml:"force_constant"`
	PixelsPerUnit float64 `yaml:"pixels_per_unit"`
	MinDistance   float64 `yaml:"min_distance"`
}

type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ParticlesConfig struct {
	Count       int     `yaml:"count"`
	MinCharge   float64 `yaml:"min_charge"`
	MaxCharge   float64 `yaml:"max_charge"`
	MaxVelocity float64 `yaml:"max_initial_velocity"`
	// UniformCharge gives every particle MinCharge.
	UniformCharge bool `yaml:"uniform_charge"`
	// AtRest starts every particle with zero velocity.
	AtRest bool `yaml:"at_rest"`
}

type DisplayConfig struct {
	SleepMillis int `yaml:"sleep_ms"`
	Trail       int `yaml:"trail"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator:  DefaultIntegrator,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Normalize:   true,
		Physics: PhysicsConfig{
			ForceConstant: DefaultForceConstant,
			PixelsPerUnit: DefaultPixelsPerUnit,
			MinDistance:   DefaultMinDistance,
		},
		World: WorldConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Particles: ParticlesConfig{
			Count:       DefaultCount,
			MinCharge:   DefaultMinCharge,
			MaxCharge:   DefaultMaxCharge,
			MaxVelocity: DefaultMaxVelocity,
		},
		Display: DisplayConfig{
			SleepMillis: DefaultSleepMillis,
			Trail:       DefaultTrailLength,
		},
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads a YAML file over cfg, so a file can refine a preset. cfg
// may be partly updated when parsing fails.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Dt > 0, fmt.Sprintf("dt must be positive, got %v", c.Dt)},
		{c.Steps >= 0, fmt.Sprintf("steps must not be negative, got %d", c.Steps)},
		{c.SampleEvery >= 0, fmt.Sprintf("sample_every must not be negative, got %d", c.SampleEvery)},
		{c.Physics.ForceConstant >= 0, fmt.Sprintf("force_constant must not be negative, got %v", c.Physics.ForceConstant)},
		{c.Physics.PixelsPerUnit > 0, fmt.Sprintf("pixels_per_unit must be positive, got %v", c.Physics.PixelsPerUnit)},
		{c.Physics.MinDistance > 0, fmt.Sprintf("min_distance must be positive, got %v", c.Physics.MinDistance)},
		{c.World.Width > 0 && c.World.Height > 0, fmt.Sprintf("world must have positive extent, got %vx%v", c.World.Width, c.World.Height)},
		{c.Particles.Count > 0, fmt.Sprintf("particle count must be positive, got %d", c.Particles.Count)},
		{c.Particles.MinCharge > 0, fmt.Sprintf("min_charge must be positive, got %v", c.Particles.MinCharge)},
		{c.Particles.MaxCharge >= c.Particles.MinCharge, fmt.Sprintf("max_charge %v below min_charge %v", c.Particles.MaxCharge, c.Particles.MinCharge)},
		{c.Particles.MaxVelocity >= 0, fmt.Sprintf("max_initial_velocity must not be negative, got %v", c.Particles.MaxVelocity)},
		{c.Display.SleepMillis > 0, fmt.Sprintf("sleep_ms must be positive, got %d", c.Display.SleepMillis)},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("config: %s: %w", chk.msg, dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// SimConfig returns the run parameters the simulator consumes.
func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
	}
}

// TickInterval is the wall-clock delay between steps in live mode.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Display.SleepMillis) * time.Millisecond
}
