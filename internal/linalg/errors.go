package linalg

import "errors"

var (
	// ErrDimensionMismatch indicates operands whose shapes are incompatible.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrSingular indicates a system whose determinant is below SingularThreshold.
	ErrSingular = errors.New("linalg: matrix is singular")
)
