package linalg

import (
	"fmt"
	"math"
)

// SingularThreshold is the smallest |det| Solve3x3 accepts.
const SingularThreshold = 1e-10

func det3(a Matrix) float64 {
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
}

// Solve3x3 solves a·x = b by Cramer's rule.
func Solve3x3(a Matrix, b []float64) ([]float64, error) {
	if a.Rows() != 3 || a.Cols() != 3 || len(b) != 3 {
		return nil, fmt.Errorf("solve %dx%d with rhs of length %d: %w", a.Rows(), a.Cols(), len(b), ErrDimensionMismatch)
	}

	det := det3(a)
	if math.Abs(det) < SingularThreshold {
		return nil, fmt.Errorf("det=%.3e: %w", det, ErrSingular)
	}

	x := make([]float64, 3)
	for col := 0; col < 3; col++ {
		// replace column col with b
		m := a.Clone()
		for row := 0; row < 3; row++ {
			m[row][col] = b[row]
		}
		x[col] = det3(m) / det
	}
	return x, nil
}
