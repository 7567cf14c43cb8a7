// Package experiment assembles a simulator, an arm binding and a control
// loop from a configuration.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/robot"
	"github.com/san-kum/ikdrive/internal/sim"
	"go.uber.org/zap"
)

type Experiment struct {
	cfg       *config.Config
	logger    *zap.Logger
	simulator *sim.Simulator
	arm       *robot.Arm
	loop      *control.Loop
}

func New(cfg *config.Config, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

// Setup builds a fresh simulator and binds the arm to it. Extra options are
// passed to the control loop after the logger and default metrics.
func (e *Experiment) Setup(reg *Registry, opts ...control.Option) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	model, err := reg.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	s, err := sim.New(model, e.cfg.Sim())
	if err != nil {
		return fmt.Errorf("create simulator: %w", err)
	}

	frame := robot.WorldFrame
	if path := e.cfg.FramePath(); path != "" {
		id, err := s.ResolveBody(path)
		if err != nil {
			return fmt.Errorf("reference frame: %w", err)
		}
		frame = robot.Frame(id)
	}

	arm, err := robot.Bind(s, e.cfg.Robot.Joints, e.cfg.Robot.TipCandidates, frame)
	if err != nil {
		return fmt.Errorf("bind arm: %w", err)
	}

	traj, err := reg.GetTrajectory(e.cfg.Trajectory, e.cfg.Control.StepSize)
	if err != nil {
		return err
	}

	all := append([]control.Option{
		control.WithLogger(e.logger),
		control.WithMetrics(reg.DefaultMetrics()...),
	}, opts...)
	loop, err := control.New(arm, traj, e.cfg.Loop(), all...)
	if err != nil {
		return err
	}

	e.logger.Debug("experiment ready",
		zap.String("model", e.cfg.Model),
		zap.String("tip", arm.TipPath),
		zap.String("trajectory", e.cfg.Trajectory.Kind),
	)
	e.simulator, e.arm, e.loop = s, arm, loop
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*control.Result, error) {
	if e.loop == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.loop.Run(ctx)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Arm() *robot.Arm { return e.arm }
