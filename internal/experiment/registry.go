package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/models"
	"github.com/san-kum/ikdrive/internal/robot"
	"github.com/san-kum/ikdrive/internal/trajectory"
)

type Registry struct {
	models       map[string]func() *models.Panda
	trajectories map[string]func(config.TrajectoryConfig, float64) trajectory.Generator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:       make(map[string]func() *models.Panda),
		trajectories: make(map[string]func(config.TrajectoryConfig, float64) trajectory.Generator),
	}

	r.models["panda"] = models.NewPanda

	r.trajectories["circle"] = func(_ config.TrajectoryConfig, step float64) trajectory.Generator {
		return trajectory.NewCircle(step)
	}
	r.trajectories["line"] = func(tc config.TrajectoryConfig, step float64) trajectory.Generator {
		dir := robot.CartesianVector{X: 1}
		if len(tc.Direction) == 3 {
			dir = robot.CartesianVector{X: tc.Direction[0], Y: tc.Direction[1], Z: tc.Direction[2]}
		}
		return trajectory.NewLine(step, dir)
	}

	return r
}

func (r *Registry) GetModel(name string) (*models.Panda, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetTrajectory(tc config.TrajectoryConfig, step float64) (trajectory.Generator, error) {
	fn, ok := r.trajectories[tc.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown trajectory: %s", tc.Kind)
	}
	return fn(tc, step), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListTrajectories() []string {
	return sortedKeys(r.trajectories)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []metrics.Metric {
	return metrics.Defaults()
}
