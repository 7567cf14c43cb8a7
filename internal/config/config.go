package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/robot"
	"github.com/san-kum/ikdrive/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRoot       = "/Franka"
	DefaultModel      = "panda"
	DefaultTrajectory = "circle"
	WorldFrame        = "world"
	jointPrefix       = "panda_joint"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Model      string           `yaml:"model"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	Realtime   bool             `yaml:"realtime"`
	Robot      RobotConfig      `yaml:"robot"`
	Control    ControlConfig    `yaml:"control"`
	Trajectory TrajectoryConfig `yaml:"trajectory"`
}

// RobotConfig names the simulator objects the controller binds to.
type RobotConfig struct {
	Root          string    `yaml:"root"`
	Joints        []string  `yaml:"joints"`
	TipCandidates []string  `yaml:"tip_candidates"`
	Frame         string    `yaml:"frame"`
	Initial       []float64 `yaml:"initial,omitempty"`
}

type TrajectoryConfig struct {
	Kind string `yaml:"kind"`
	// Direction is used by the line trajectory.
	Direction []float64 `yaml:"direction,omitempty"`
}

type ControlConfig struct {
	Epsilon       float64 `yaml:"epsilon"`
	Damping       float64 `yaml:"damping"`
	MaxJointStep  float64 `yaml:"max_joint_step"`
	MaxStepNorm   float64 `yaml:"max_step_norm"`
	StepSize      float64 `yaml:"step_size"`
	RefreshPeriod int     `yaml:"refresh_period"`
	DrainTicks    int     `yaml:"drain_ticks"`
	SettleProbes  bool    `yaml:"settle_probes"`
	LogInterval   float64 `yaml:"log_interval"`
	// FailAfter injects a simulator fault after that many advances.
	FailAfter int `yaml:"fail_after,omitempty"`
}

func DefaultConfig() *Config {
	lc := control.DefaultConfig()
	return &Config{
		Model:    DefaultModel,
		Dt:       lc.Dt,
		Duration: lc.Duration,
		Robot: RobotConfig{
			Root:          DefaultRoot,
			Joints:        JointPaths(DefaultRoot),
			TipCandidates: TipCandidates(DefaultRoot),
			Frame:         WorldFrame,
		},
		Control: ControlConfig{
			Epsilon:       lc.Epsilon,
			Damping:       lc.Damping,
			MaxJointStep:  lc.MaxJointStep,
			MaxStepNorm:   lc.MaxStepNorm,
			StepSize:      lc.StepSize,
			RefreshPeriod: lc.RefreshPeriod,
			DrainTicks:    lc.DrainTicks,
			SettleProbes:  lc.SettleProbes,
			LogInterval:   lc.LogInterval,
		},
		Trajectory: TrajectoryConfig{Kind: DefaultTrajectory},
	}
}

// JointPaths returns the seven Panda joint paths under root.
func JointPaths(root string) []string {
	paths := make([]string, robot.NumJoints)
	for i := range paths {
		paths[i] = root + "/" + jointPrefix + strconv.Itoa(i+1)
	}
	return paths
}

// TipCandidates lists the end-effector bodies under root, most specific first.
func TipCandidates(root string) []string {
	return []string{
		root + "/panda_tip",
		root + "/panda_hand",
		root + "/panda_link8",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: no model", ErrInvalid)
	}
	if c.Trajectory.Kind == "" {
		return fmt.Errorf("%w: no trajectory", ErrInvalid)
	}
	if n := len(c.Trajectory.Direction); n != 0 && n != 3 {
		return fmt.Errorf("%w: trajectory direction needs 3 components, got %d", ErrInvalid, n)
	}
	if len(c.Robot.Joints) != robot.NumJoints {
		return fmt.Errorf("%w: need %d joint paths, got %d", ErrInvalid, robot.NumJoints, len(c.Robot.Joints))
	}
	if len(c.Robot.TipCandidates) == 0 {
		return fmt.Errorf("%w: no tip candidates", ErrInvalid)
	}
	if n := len(c.Robot.Initial); n != 0 && n != robot.NumJoints {
		return fmt.Errorf("%w: initial configuration needs %d angles, got %d", ErrInvalid, robot.NumJoints, n)
	}
	if c.Control.FailAfter < 0 {
		return fmt.Errorf("%w: fail_after must be non-negative", ErrInvalid)
	}
	return c.Loop().Validate()
}

// Loop returns the control loop settings.
func (c *Config) Loop() control.Config {
	return control.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Epsilon:       c.Control.Epsilon,
		Damping:       c.Control.Damping,
		MaxJointStep:  c.Control.MaxJointStep,
		MaxStepNorm:   c.Control.MaxStepNorm,
		StepSize:      c.Control.StepSize,
		RefreshPeriod: c.Control.RefreshPeriod,
		DrainTicks:    c.Control.DrainTicks,
		SettleProbes:  c.Control.SettleProbes,
		Realtime:      c.Realtime,
		LogInterval:   c.Control.LogInterval,
	}
}

// Sim returns the simulator settings.
func (c *Config) Sim() sim.Config {
	sc := sim.Config{
		Dt:        c.Dt,
		Root:      c.Robot.Root,
		FailAfter: c.Control.FailAfter,
		// Unsettled probes read the tip right after commanding it.
		Immediate: !c.Control.SettleProbes,
	}
	if len(c.Robot.Initial) == robot.NumJoints {
		var q robot.JointVector
		copy(q[:], c.Robot.Initial)
		sc.Initial = &q
	}
	return sc
}

// FramePath returns the body path positions are expressed in, or "" for the
// world frame.
func (c *Config) FramePath() string {
	if c.Robot.Frame == "" || c.Robot.Frame == WorldFrame {
		return ""
	}
	return c.Robot.Frame
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Robot.Joints = append([]string(nil), c.Robot.Joints...)
	out.Robot.TipCandidates = append([]string(nil), c.Robot.TipCandidates...)
	if c.Robot.Initial != nil {
		out.Robot.Initial = append([]float64(nil), c.Robot.Initial...)
	}
	if c.Trajectory.Direction != nil {
		out.Trajectory.Direction = append([]float64(nil), c.Trajectory.Direction...)
	}
	return &out
}

// Tunable lists the parameter names Set accepts.
var Tunable = []string{"damping", "epsilon", "max_step", "refresh_period", "step_size"}

// Set assigns a numeric loop parameter by name. Used by the grid search.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "damping":
		c.Control.Damping = v
	case "epsilon":
		c.Control.Epsilon = v
	case "max_step":
		c.Control.MaxJointStep = v
		c.Control.MaxStepNorm = v
	case "refresh_period":
		c.Control.RefreshPeriod = int(v)
	case "step_size":
		c.Control.StepSize = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalid, name)
	}
	return nil
}
