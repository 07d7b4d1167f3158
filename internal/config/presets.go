package config

import "sort"

// Presets are named starting configurations. Each is applied over the
// defaults, so only fields that differ need setting.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"crowd": func(c *Config) {
		c.Particles.Count = 40
		c.Particles.MinCharge = 5
		c.Particles.MaxCharge = 15
		c.Physics.ForceConstant = 5000
		c.Dt = 0.05
	},
	"duel": func(c *Config) {
		c.Particles.Count = 2
		c.Particles.MinCharge = 30
		c.Particles.MaxCharge = 30
		c.Particles.MaxVelocity = 5
	},
	"rest": func(c *Config) {
		c.Particles.AtRest = true
	},
	"heavy": func(c *Config) {
		c.Particles.Count = 6
		c.Particles.MinCharge = 40
		c.Particles.MaxCharge = 60
		c.Physics.ForceConstant = 50000
		c.World.Width = 1200
		c.World.Height = 900
	},
	"uniform": func(c *Config) {
		c.Particles.UniformCharge = true
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
