package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/robot"
	"go.uber.org/zap/zaptest"
)

func shortConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Duration = 1
	return cfg
}

func TestExperimentRun(t *testing.T) {
	exp := New(shortConfig(), zaptest.NewLogger(t))
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Ticks == 0 {
		t.Error("expected at least one tick")
	}
	if exp.Simulator().Running() {
		t.Error("simulator left running")
	}
	if exp.Arm().TipPath != "/Franka/panda_tip" {
		t.Errorf("expected panda_tip, got %s", exp.Arm().TipPath)
	}
	for _, m := range metrics.Defaults() {
		if _, ok := result.Metrics[m.Name()]; !ok {
			t.Errorf("missing metric %s", m.Name())
		}
	}
}

func TestExperimentLineDescends(t *testing.T) {
	cfg := shortConfig()
	cfg.Trajectory = config.TrajectoryConfig{Kind: "line", Direction: []float64{0, 0, -1}}

	var samples []metrics.Sample
	exp := New(cfg, nil)
	observer := control.ObserverFunc(func(s metrics.Sample) { samples = append(samples, s) })
	if err := exp.Setup(NewRegistry(), control.WithObserver(observer)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(samples) < 2 {
		t.Fatalf("expected several samples, got %d", len(samples))
	}
	first, last := samples[0].Tip, samples[len(samples)-1].Tip
	if last.Z >= first.Z {
		t.Errorf("tip did not descend: %v -> %v", first, last)
	}
}

func TestExperimentBaseFrame(t *testing.T) {
	cfg := shortConfig()
	cfg.Robot.Frame = "/Franka"

	exp := New(cfg, nil)
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	tip, err := exp.Arm().Tip()
	if err != nil {
		t.Fatalf("tip: %v", err)
	}
	world := exp.Simulator().Model().Forward(exp.Simulator().Joints()).Pos
	if tip.Sub(world).Norm() > 1e-12 {
		t.Errorf("base frame tip %v differs from world %v", tip, world)
	}
}

func TestExperimentSetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"unknown model", func(c *config.Config) { c.Model = "ur5" }, nil},
		{"unknown trajectory", func(c *config.Config) { c.Trajectory.Kind = "spiral" }, nil},
		{"missing tip", func(c *config.Config) { c.Robot.TipCandidates = []string{"/Franka/gripper"} }, robot.ErrNotFound},
		{"missing joint", func(c *config.Config) { c.Robot.Joints[3] = "/Franka/elbow" }, robot.ErrNotFound},
		{"missing frame", func(c *config.Config) { c.Robot.Frame = "/Table" }, robot.ErrNotFound},
		{"invalid loop", func(c *config.Config) { c.Control.Damping = -1 }, control.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := shortConfig()
			tt.mutate(cfg)

			err := New(cfg, nil).Setup(NewRegistry())
			if err == nil {
				t.Fatal("expected setup error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunBeforeSetup(t *testing.T) {
	if _, err := New(shortConfig(), nil).Run(context.Background()); err == nil {
		t.Error("expected error running without setup")
	}
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	if got := r.ListModels(); len(got) != 1 || got[0] != "panda" {
		t.Errorf("unexpected models %v", got)
	}
	if got := r.ListTrajectories(); len(got) != 2 || got[0] != "circle" || got[1] != "line" {
		t.Errorf("unexpected trajectories %v", got)
	}
}
