package ik

import (
	"errors"
	"fmt"

	"github.com/san-kum/ikdrive/internal/linalg"
	"github.com/san-kum/ikdrive/internal/robot"
)

// Jacobian maps joint displacements to tip displacements. Row is the
// Cartesian axis, column the joint.
type Jacobian [3][robot.NumJoints]float64

func (j Jacobian) Matrix() linalg.Matrix {
	m := linalg.New(3, robot.NumJoints)
	for i := range j {
		copy(m[i], j[i][:])
	}
	return m
}

// Apply returns J·dq.
func (j Jacobian) Apply(dq robot.JointVector) robot.CartesianVector {
	var v [3]float64
	for i := range j {
		for k := range dq {
			v[i] += j[i][k] * dq[k]
		}
	}
	return robot.CartesianVector{X: v[0], Y: v[1], Z: v[2]}
}

// Prober is the part of the arm the estimator needs: command a configuration,
// advance the clock, read the tip.
type Prober interface {
	Command(q robot.JointVector) error
	Step() error
	Tip() (robot.CartesianVector, error)
}

// Estimator builds a forward-difference Jacobian by perturbing one joint at
// a time. Each call recomputes every column.
type Estimator struct {
	Epsilon float64
	// Settle advances the simulation after every command so the probe reads
	// a configuration the simulator has actually applied.
	Settle bool
}

func NewEstimator(eps float64, settle bool) *Estimator {
	return &Estimator{Epsilon: eps, Settle: settle}
}

// Estimate returns the Jacobian at q, where base is the tip position at q.
// The arm is commanded back to q after every column, including when a probe
// fails.
func (e *Estimator) Estimate(p Prober, q robot.JointVector, base robot.CartesianVector) (Jacobian, error) {
	var jac Jacobian
	if !(e.Epsilon > 0) {
		return jac, fmt.Errorf("%w: got %g", ErrInvalidEpsilon, e.Epsilon)
	}

	for i := 0; i < robot.NumJoints; i++ {
		pert := q
		pert[i] += e.Epsilon

		tip, probeErr := e.probe(p, pert)
		restoreErr := e.apply(p, q)

		if probeErr != nil {
			err := fmt.Errorf("%w: joint %d: %w", ErrEvaluation, i+1, probeErr)
			if restoreErr != nil {
				err = errors.Join(err, fmt.Errorf("restore: %w", restoreErr))
			}
			return jac, err
		}
		if restoreErr != nil {
			return jac, fmt.Errorf("%w: restore after joint %d: %w", ErrEvaluation, i+1, restoreErr)
		}

		d := tip.Sub(base).Mul(1 / e.Epsilon)
		jac[0][i], jac[1][i], jac[2][i] = d.X, d.Y, d.Z
	}

	return jac, nil
}

func (e *Estimator) probe(p Prober, q robot.JointVector) (robot.CartesianVector, error) {
	if err := e.apply(p, q); err != nil {
		return robot.CartesianVector{}, err
	}
	tip, err := p.Tip()
	if err != nil {
		return robot.CartesianVector{}, err
	}
	if !robot.IsFinite(tip) {
		return robot.CartesianVector{}, fmt.Errorf("non-finite tip reading %v", tip)
	}
	return tip, nil
}

func (e *Estimator) apply(p Prober, q robot.JointVector) error {
	if err := p.Command(q); err != nil {
		return err
	}
	if e.Settle {
		return p.Step()
	}
	return nil
}
