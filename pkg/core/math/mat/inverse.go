package mat

import (
	"errors"

	"github.com/chewxy/math32"
	matTypes "github.com/itohio/legged-wbc/pkg/core/math/mat/types"
)

const (
	// SingularityTolerance is the tolerance for detecting singular matrices
	SingularityTolerance = 1e-6
)

var (
	// ErrNotSquare is returned when trying to invert a non-square matrix
	ErrNotSquare = errors.New("matrix must be square for inverse")
	// ErrSingular is returned when trying to invert a singular matrix
	ErrSingular = errors.New("matrix is singular (determinant near zero)")
)

// Inverse calculates the inverse of a square matrix using Gauss-Jordan
// elimination with partial pivoting.
// Returns error if matrix is not square or singular.
// Destination matrix must be properly sized (same as source).
func (m Matrix) Inverse(dst matTypes.Matrix) error {
	rows := len(m)
	if rows == 0 {
		return ErrNotSquare
	}
	cols := len(m[0])
	if rows != cols {
		return ErrNotSquare
	}

	dstMat := ensureMatrix(dst, "Inverse.dst")

	work := make([][]float32, rows)
	for i := range m {
		work[i] = append([]float32(nil), m[i]...)
	}

	dstMat.Eye()

	for col := 0; col < rows; col++ {
		pivotRow := col
		pivotVal := math32.Abs(work[col][col])
		for r := col + 1; r < rows; r++ {
			if v := math32.Abs(work[r][col]); v > pivotVal {
				pivotRow, pivotVal = r, v
			}
		}
		if pivotVal < SingularityTolerance {
			return ErrSingular
		}
		if pivotRow != col {
			work[col], work[pivotRow] = work[pivotRow], work[col]
			dstMat[col], dstMat[pivotRow] = dstMat[pivotRow], dstMat[col]
		}

		pivot := work[col][col]
		invPivot := 1.0 / pivot
		for j := 0; j < rows; j++ {
			work[col][j] *= invPivot
			dstMat[col][j] *= invPivot
		}

		for r := 0; r < rows; r++ {
			if r == col {
				continue
			}
			factor := work[r][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < rows; j++ {
				work[r][j] -= factor * work[col][j]
				dstMat[r][j] -= factor * dstMat[col][j]
			}
		}
	}

	return nil
}
