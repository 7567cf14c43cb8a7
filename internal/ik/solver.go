package ik

import (
	"github.com/san-kum/ikdrive/internal/linalg"
	"github.com/san-kum/ikdrive/internal/robot"
)

// Solve returns the damped least-squares joint step
//
//	dq = Jᵗ (J Jᵗ + λ² I)⁻¹ dx
//
// A linalg.ErrSingular from the 3×3 solve is returned as is; with λ > 0 it
// means the damping is too small for the current Jacobian.
func Solve(j Jacobian, dx robot.CartesianVector, lambda float64) (robot.JointVector, error) {
	var dq robot.JointVector

	jm := j.Matrix()
	jt := linalg.Transpose(jm)

	jjt, err := linalg.Multiply(jm, jt)
	if err != nil {
		return dq, err
	}
	damped, err := linalg.Add(jjt, linalg.Scale(linalg.Identity(3), lambda*lambda))
	if err != nil {
		return dq, err
	}

	y, err := linalg.Solve3x3(damped, []float64{dx.X, dx.Y, dx.Z})
	if err != nil {
		return dq, err
	}

	out, err := linalg.Multiply(jt, linalg.Column(y))
	if err != nil {
		return dq, err
	}
	for i := range dq {
		dq[i] = out[i][0]
	}
	return dq, nil
}
