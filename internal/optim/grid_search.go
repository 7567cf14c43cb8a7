// Package optim searches loop parameters for the best run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/ikdrive/internal/control"
	"golang.org/x/sync/errgroup"
)

var ErrNoCandidates = errors.New("optim: no candidate completed")

// Runner is one independent run, typically an *experiment.Experiment after
// Setup. Each candidate must own its simulator.
type Runner interface {
	Run(ctx context.Context) (*control.Result, error)
}

type BuildFunc func(params map[string]float64) (Runner, error)

type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type Outcome struct {
	Best      map[string]float64
	BestValue float64
	Trials    []Trial
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	limit      int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit bounds the number of candidates run at once.
func (g *GridSearch) SetLimit(n int) {
	if n > 0 {
		g.limit = n
	}
}

// Search runs every point of the grid and returns the one with the lowest
// value of metricName. Failed candidates are kept in Outcome.Trials and
// otherwise ignored.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (*Outcome, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []map[string]float64
	g.enumerate(0, make(map[string]float64), &points)

	trials := make([]Trial, len(points))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit)

	for i, params := range points {
		i, params := i, params
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			trials[i] = evaluate(egCtx, build, params, metricName)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Outcome{BestValue: math.Inf(1), Trials: trials}
	for _, t := range trials {
		if t.Err == nil && t.Value < out.BestValue {
			out.BestValue = t.Value
			out.Best = t.Params
		}
	}
	if out.Best == nil {
		return out, ErrNoCandidates
	}
	return out, nil
}

func evaluate(ctx context.Context, build BuildFunc, params map[string]float64, metricName string) Trial {
	t := Trial{Params: params, Value: math.NaN()}

	runner, err := build(params)
	if err != nil {
		t.Err = fmt.Errorf("build: %w", err)
		return t
	}
	result, err := runner.Run(ctx)
	if err != nil {
		t.Err = err
		return t
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		t.Err = fmt.Errorf("metric %q not reported", metricName)
		return t
	}
	t.Value = val
	return t
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.enumerate(depth+1, newParams, out)
	}
}
