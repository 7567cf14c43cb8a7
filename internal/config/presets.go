package config

import "sort"

var Presets = map[string]*Config{
	"circle": DefaultConfig(),
	"gentle": with(func(c *Config) {
		c.Duration = 12
		c.Control.StepSize = 0.001
		c.Control.Damping = 0.2
	}),
	"aggressive": with(func(c *Config) {
		c.Control.StepSize = 0.005
		c.Control.Damping = 0.05
		c.Control.MaxJointStep = 0.1
		c.Control.MaxStepNorm = 0.1
	}),
	"stale": with(func(c *Config) {
		c.Control.RefreshPeriod = 20
	}),
	"fresh": with(func(c *Config) {
		c.Control.RefreshPeriod = 1
	}),
	"descend": with(func(c *Config) {
		c.Duration = 4
		c.Trajectory = TrajectoryConfig{Kind: "line", Direction: []float64{0, 0, -1}}
	}),
	"realtime": with(func(c *Config) {
		c.Realtime = true
	}),
	"extended": with(func(c *Config) {
		c.Duration = 10
		c.Robot.Initial = []float64{0, -0.5, 0, -1.8, 0, 1.3, 0.785398}
	}),
}

func with(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
