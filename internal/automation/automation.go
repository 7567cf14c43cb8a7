// Package automation runs scripted batches of control loop runs.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/experiment"
	"github.com/san-kum/ikdrive/internal/robot"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run. Zero fields keep the preset's value.
type Step struct {
	Preset     string             `yaml:"preset"`
	Trajectory string             `yaml:"trajectory"`
	Duration   float64            `yaml:"duration"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// Run is the outcome of one step. Result is kept even when Err is set.
type Run struct {
	Label  string
	Config *config.Config
	Result *control.Result
	Err    error
}

// SaveFunc is called after every step, e.g. to persist the run.
type SaveFunc func(Run) error

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyScenario)
	}
	return &scenario, nil
}

// Config resolves the step's preset and overrides.
func (s Step) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = config.DefaultTrajectory
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}

	if s.Trajectory != "" {
		cfg.Trajectory.Kind = s.Trajectory
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	for k, v := range s.Params {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// Label names the step for logs and storage.
func (s Step) Label(i int) string {
	if s.SaveAs != "" {
		return s.SaveAs
	}
	if s.Preset != "" {
		return s.Preset
	}
	return fmt.Sprintf("step%d", i+1)
}

// RunScenario executes every step in order. A failed control loop is
// recorded and the batch continues; bad step configuration, a save error
// or cancellation stops it.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, logger *zap.Logger, save SaveFunc) ([]Run, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	runs := make([]Run, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return runs, fmt.Errorf("step %d: %w", i+1, err)
		}

		label := step.Label(i)
		logger.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("label", label),
		)

		run, err := execute(ctx, cfg, reg, logger)
		if err != nil {
			return runs, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		run.Label = label
		runs = append(runs, run)

		if save != nil {
			if err := save(run); err != nil {
				return runs, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return runs, err
		}
	}
	return runs, nil
}

func execute(ctx context.Context, cfg *config.Config, reg *experiment.Registry, logger *zap.Logger) (Run, error) {
	exp := experiment.New(cfg, logger)
	if err := exp.Setup(reg); err != nil {
		return Run{}, err
	}
	result, err := exp.Run(ctx)
	return Run{Config: cfg, Result: result, Err: err}, nil
}

// MonteCarloConfig perturbs the starting pose of a base configuration.
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the largest offset, in radians, added to each joint.
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult is one perturbed trial. Stable means the loop finished
// without error and the tracking error stayed finite.
type MonteCarloResult struct {
	TrialID       int
	Initial       robot.JointVector
	TrackingError float64
	Stable        bool
	Err           error
}

// RunMonteCarlo runs the base configuration from randomly perturbed poses.
func RunMonteCarlo(ctx context.Context, mc MonteCarloConfig, reg *experiment.Registry, logger *zap.Logger) ([]MonteCarloResult, error) {
	if mc.Base == nil {
		return nil, fmt.Errorf("%w: no base configuration", config.ErrInvalid)
	}
	if mc.NumTrials <= 0 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", config.ErrInvalid, mc.NumTrials)
	}

	model, err := reg.GetModel(mc.Base.Model)
	if err != nil {
		return nil, err
	}
	base := model.Home()
	if len(mc.Base.Robot.Initial) == robot.NumJoints {
		copy(base[:], mc.Base.Robot.Initial)
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, mc.NumTrials)
	for trial := 0; trial < mc.NumTrials; trial++ {
		var q robot.JointVector
		for i := range q {
			q[i] = model.Clamp(i, base[i]+(rng.Float64()-0.5)*2*mc.Perturbation)
		}

		cfg := mc.Base.Clone()
		cfg.Robot.Initial = q.Slice()

		run, err := execute(ctx, cfg, reg, logger)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		res := MonteCarloResult{TrialID: trial, Initial: q, Err: run.Err}
		if run.Result != nil {
			res.TrackingError = run.Result.Metrics["tracking_error"]
		}
		res.Stable = run.Err == nil && !math.IsNaN(res.TrackingError) && !math.IsInf(res.TrackingError, 0)
		results = append(results, res)

		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
