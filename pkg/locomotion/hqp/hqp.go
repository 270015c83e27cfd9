// Package hqp implements C7: the lexicographic hierarchical QP cascade that
// solves a prioritized.Stack. Each level is solved strictly within the
// null space of every higher level, so a lower-priority objective can never
// degrade a higher-priority one. Equality levels reduce the null space
// exactly via a Moore-Penrose pseudo-inverse (never Gram-Schmidt);
// inequality levels are solved with Lawson-Hanson least-distance
// programming (LDP) and, as a documented simplification, do not shrink the
// null space passed to lower levels (see DESIGN.md).
package hqp

import (
	"github.com/chewxy/math32"
	"github.com/itohio/legged-wbc/pkg/core/logger"
	"github.com/itohio/legged-wbc/pkg/core/math/mat"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/prioritized"
	"github.com/itohio/legged-wbc/pkg/locomotion/tasks"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// RankTolerance is the minimum Frobenius norm a level's projected equality
// Jacobian must retain for its pseudo-inverse to be considered meaningful;
// below it the level is skipped and reported as degenerate.
const RankTolerance = float32(1e-8)

// LevelDiagnostic records what happened solving one priority level, for the
// controller's diagnostic surface (spec's LastSolution).
type LevelDiagnostic struct {
	Name       string
	Skipped    bool
	RankLoss   bool
	Infeasible bool
}

// Solution is the cascade's full result: the optimisation vector and one
// diagnostic entry per level, in priority order.
type Solution struct {
	X           []float32
	Diagnostics []LevelDiagnostic
}

func identity(n int) mat.Matrix {
	m := mat.New(n, n)
	m.Eye()
	return m
}

func matVec(A mat.Matrix, x []float32) []float32 {
	out := make([]float32, len(A))
	for r := range A {
		var sum float32
		for c, v := range A[r] {
			sum += v * x[c]
		}
		out[r] = sum
	}
	return out
}

func vecSub(a, b []float32) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func vecNegate(a []float32) []float32 {
	out := make([]float32, len(a))
	for i, v := range a {
		out[i] = -v
	}
	return out
}

// Solve runs the lexicographic cascade for one control tick and returns the
// optimisation vector x = [v̇; F_c; d_des].
func Solve(stack prioritized.Stack, ctx tasks.Context) (Solution, error) {
	nx := ctx.NX()
	N := identity(nx)
	x := make([]float32, nx)
	diagnostics := make([]LevelDiagnostic, 0, len(stack.Levels))

	for _, level := range stack.Levels {
		A, b, C, d, err := level.Build(ctx)
		if err != nil {
			return Solution{}, locotypes.Wrap("hqp", locotypes.PreconditionViolation, err, "building level %q", level.Name)
		}
		diag := LevelDiagnostic{Name: level.Name}

		if len(A) == 0 && len(C) == 0 {
			diag.Skipped = true
			diagnostics = append(diagnostics, diag)
			continue
		}

		if len(A) > 0 {
			dx, rankLoss := solveEqualityInNullSpace(A, b, x, N)
			if rankLoss {
				diag.RankLoss = true
				logger.Log.Warn().Str("level", level.Name).Msg("hqp: rank loss projecting equality level into remaining null space, skipping")
			} else {
				for i := range x {
					x[i] += dx[i]
				}
				N = shrinkNullSpace(A, N)
			}
		}

		if len(C) > 0 {
			dx, infeasible := solveInequalityInNullSpace(C, d, x, N)
			if infeasible {
				diag.Infeasible = true
				logger.Log.Warn().Str("level", level.Name).Msg("hqp: inequality level infeasible beyond slack tolerance")
			} else {
				for i := range x {
					x[i] += dx[i]
				}
			}
		}

		diagnostics = append(diagnostics, diag)
	}

	return Solution{X: x, Diagnostics: diagnostics}, nil
}

// solveEqualityInNullSpace solves min ||A(x+N·z) - b|| over z via the
// classical hierarchical formula z = (A·N)^+ · (b - A·x), returning the
// increment to apply (already within range(N)).
func solveEqualityInNullSpace(A [][]float32, b []float32, x []float32, N mat.Matrix) (dx []float32, rankLoss bool) {
	rows := len(A)
	cols := len(A[0])
	AN := mat.New(rows, cols)
	AN.Mul(mat.Matrix(A), N)

	if frobeniusNorm(AN) < RankTolerance {
		return make([]float32, cols), true
	}

	r := vecSub(b, matVec(mat.Matrix(A), x))

	pinv := mat.New(cols, rows)
	if err := AN.PseudoInverse(pinv); err != nil {
		return make([]float32, cols), true
	}
	dx = matVec(pinv, r)
	return dx, false
}

// shrinkNullSpace removes the row space of A·N from the remaining null
// space: N <- N·(I - (A·N)^+·(A·N)).
func shrinkNullSpace(A [][]float32, N mat.Matrix) mat.Matrix {
	rows := len(A)
	cols := len(A[0])
	AN := mat.New(rows, cols)
	AN.Mul(mat.Matrix(A), N)

	if frobeniusNorm(AN) < RankTolerance {
		return N
	}

	pinv := mat.New(cols, rows)
	if err := AN.PseudoInverse(pinv); err != nil {
		return N
	}
	proj := mat.New(cols, cols)
	proj.Mul(pinv, AN)

	reduced := mat.New(cols, cols)
	reduced.Eye()
	for i := range reduced {
		for j := range reduced[i] {
			reduced[i][j] -= proj[i][j]
		}
	}

	out := mat.New(cols, cols)
	out.Mul(N, reduced)
	return out
}

// solveInequalityInNullSpace enforces C·(x+z) <= d over z in ambient space
// via LDP (min ||z|| s.t. G·z >= H, G = -C·N, H = -(d - C·x)); directions
// outside range(N) carry no benefit to the constraint and are driven to
// zero by the min-norm objective, so the returned z already lies in the
// remaining null space.
func solveInequalityInNullSpace(C [][]float32, d []float32, x []float32, N mat.Matrix) (dx []float32, infeasible bool) {
	rows := len(C)
	cols := len(C[0])
	CN := mat.New(rows, cols)
	CN.Mul(mat.Matrix(C), N)

	G := mat.New(rows, cols)
	for i := range G {
		for j := range G[i] {
			G[i][j] = -CN[i][j]
		}
	}
	Cx := matVec(mat.Matrix(C), x)
	H := make(vec.Vector, rows)
	for i := range H {
		H[i] = -(d[i] - Cx[i])
	}

	var result mat.LDPResult
	if err := mat.LDP(G, H, &result, 1e30); err != nil {
		return make([]float32, cols), true
	}
	return []float32(result.X), false
}

func frobeniusNorm(m mat.Matrix) float32 {
	var sum float32
	for _, row := range m {
		for _, v := range row {
			sum += v * v
		}
	}
	return math32.Sqrt(sum)
}
