package ik

import "errors"

var (
	// ErrEvaluation indicates a Jacobian probe could not be completed.
	ErrEvaluation = errors.New("ik: jacobian probe failed")

	// ErrInvalidEpsilon indicates a non-positive finite-difference step.
	ErrInvalidEpsilon = errors.New("ik: perturbation epsilon must be positive")
)
