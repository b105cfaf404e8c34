// Package transition builds the monthly, point-in-time transition matrix
// series from a through-the-cycle (TTC) matrix: generator-matrix recovery
// and repair (C3), write-off augmentation (C3), and the Z-conditional
// TTC->PiT transform with cumulative products (C4).
package transition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jiangshenghai57/zmodel/zerr"
)

// RepairStrategy selects how a generator matrix's spurious negative
// off-diagonal mass is repaired after log-recovery.
type RepairStrategy int

const (
	WA RepairStrategy = iota // Weighted Adjustment (default)
	DA                        // Diagonal Adjustment
	QO                        // Quasi-optimisation
)

const rowSumTolerance = 1e-6

// Standardise clips negative entries to zero and renormalises each row to
// sum to 1 (up to the delta slack used downstream by the Z-shift default
// barrier construction).
func Standardise(x [][]float64, delta float64) [][]float64 {
	n := len(x)
	out := make([][]float64, n)
	for i := range x {
		row := make([]float64, len(x[i]))
		sum := 0.0
		for j, v := range x[i] {
			if v < 0 {
				v = 0
			}
			row[j] = v
			sum += v
		}
		denom := sum * (1 + delta)
		for j := range row {
			row[j] /= denom
		}
		out[i] = row
	}
	return out
}

func toDense(x [][]float64) *mat.Dense {
	n := len(x)
	flat := make([]float64, 0, n*n)
	for _, row := range x {
		flat = append(flat, row...)
	}
	return mat.NewDense(n, n, flat)
}

func toSlice(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

// matrixLog recovers Q such that exp(Q) ~= X via eigen-decomposition:
// X = V*diag(lambda)*V^-1, log(X) = V*diag(log(lambda))*V^-1. Complex or
// non-positive eigenvalues fail with InvalidTTCMatrix.
func matrixLog(x *mat.Dense) (*mat.Dense, error) {
	n, _ := x.Dims()

	var eig mat.Eigen
	if ok := eig.Factorize(x, mat.EigenRight); !ok {
		return nil, zerr.New(zerr.InvalidTTCMatrix, "", "eigen", fmt.Errorf("eigen decomposition failed to converge"))
	}
	values := eig.Values(nil)

	var cv mat.CDense
	eig.VectorsTo(&cv)

	vReal := mat.NewDense(n, n, nil)
	logLambda := make([]float64, n)
	for j, lambda := range values {
		if math.Abs(imag(lambda)) > 1e-8 {
			return nil, zerr.New(zerr.InvalidTTCMatrix, "", "eigenvalues", fmt.Errorf("eigenvalue %v has non-negligible imaginary part", lambda))
		}
		re := real(lambda)
		if re <= 0 {
			return nil, zerr.New(zerr.InvalidTTCMatrix, "", "eigenvalues", fmt.Errorf("eigenvalue %v is not positive", lambda))
		}
		logLambda[j] = math.Log(re)
		for i := 0; i < n; i++ {
			vReal.Set(i, j, real(cv.At(i, j)))
		}
	}

	var vInv mat.Dense
	if err := vInv.Inverse(vReal); err != nil {
		return nil, zerr.New(zerr.InvalidTTCMatrix, "", "eigenvectors", fmt.Errorf("eigenvector matrix is singular: %w", err))
	}

	diagLog := mat.NewDiagDense(n, logLambda)

	var tmp, q mat.Dense
	tmp.Mul(vReal, diagLog)
	q.Mul(&tmp, &vInv)
	return &q, nil
}

// matrixExp computes exp(Q) via the same eigen-decomposition technique;
// unlike matrixLog it tolerates non-positive or mildly complex
// eigenvalues (only the real part of the reconstructed matrix is used,
// since Q is expected to be a valid generator by this point).
func matrixExp(q *mat.Dense) (*mat.Dense, error) {
	n, _ := q.Dims()

	var eig mat.Eigen
	if ok := eig.Factorize(q, mat.EigenRight); !ok {
		return nil, zerr.New(zerr.MatrixRegularisationError, "", "eigen", fmt.Errorf("eigen decomposition failed to converge"))
	}
	values := eig.Values(nil)

	var cv mat.CDense
	eig.VectorsTo(&cv)

	vReal := mat.NewDense(n, n, nil)
	expLambda := make([]float64, n)
	for j, lambda := range values {
		expLambda[j] = math.Exp(real(lambda)) * math.Cos(imag(lambda))
		for i := 0; i < n; i++ {
			vReal.Set(i, j, real(cv.At(i, j)))
		}
	}

	var vInv mat.Dense
	if err := vInv.Inverse(vReal); err != nil {
		return nil, zerr.New(zerr.MatrixRegularisationError, "", "eigenvectors", fmt.Errorf("eigenvector matrix is singular: %w", err))
	}

	diagExp := mat.NewDiagDense(n, expLambda)

	var tmp, p mat.Dense
	tmp.Mul(vReal, diagExp)
	p.Mul(&tmp, &vInv)
	return &p, nil
}

// repairDA zeroes negative off-diagonal entries of q and resets the
// diagonal to minus the row's off-diagonal sum, restoring the generator
// row-sum-zero property.
func repairDA(q [][]float64) [][]float64 {
	n := len(q)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		offSum := 0.0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v := q[i][j]
			if v < 0 {
				v = 0
			}
			row[j] = v
			offSum += v
		}
		row[i] = -offSum
		out[i] = row
	}
	return out
}

// repairWA distributes each row's negative off-diagonal mass
// proportionally across the positive off-diagonal entries, scaling them
// down by w = negativeMass/positiveMass rather than discarding it outright.
func repairWA(q [][]float64) [][]float64 {
	n := len(q)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		negMass, posMass := 0.0, 0.0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v := q[i][j]
			if v < 0 {
				negMass += -v
			} else {
				posMass += v
			}
		}
		w := 0.0
		if posMass > 0 {
			w = negMass / posMass
		}
		for j := 0; j < n; j++ {
			if i == j {
				row[j] = q[i][j]
				continue
			}
			v := q[i][j]
			if v < 0 {
				row[j] = 0
			} else {
				row[j] = v * (1 - w)
			}
		}
		out[i] = row
	}
	return out
}

// repairQO projects each row onto the nearest valid generator row (zero
// off-diagonal negatives, row sum zero) under L2 distance: clip negatives
// to zero, then iteratively redistribute the clipping deficit across the
// remaining positive mass until the row sums to zero or no positive mass
// remains to absorb it.
func repairQO(q [][]float64) [][]float64 {
	n := len(q)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		copy(row, q[i])
		for iter := 0; iter < n; iter++ {
			deficit := 0.0
			posMass := 0.0
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				if row[j] < 0 {
					deficit += -row[j]
					row[j] = 0
				} else {
					posMass += row[j]
				}
			}
			if deficit == 0 {
				break
			}
			if posMass == 0 {
				break
			}
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				if row[j] > 0 {
					row[j] -= deficit * (row[j] / posMass)
				}
			}
		}
		offSum := 0.0
		for j := 0; j < n; j++ {
			if j != i {
				offSum += row[j]
			}
		}
		row[i] = -offSum
		out[i] = row
	}
	return out
}

func repair(q [][]float64, strategy RepairStrategy) [][]float64 {
	switch strategy {
	case DA:
		return repairDA(q)
	case QO:
		return repairQO(q)
	default:
		return repairWA(q)
	}
}

func maxRowSumError(p [][]float64) float64 {
	maxErr := 0.0
	for _, row := range p {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if e := math.Abs(sum - 1); e > maxErr {
			maxErr = e
		}
	}
	return maxErr
}

// Regularise converts the N x N row-stochastic TTC matrix x, observed
// over frequency f months, into a one-month row-stochastic matrix via
// generator-matrix recovery, repair, and re-exponentiation. The repair
// cascade tries strategy first, then WA -> DA -> QO in turn (skipping
// whichever was already tried) until the re-exponentiated matrix's row
// sums are within rowSumTolerance of 1; otherwise MatrixRegularisationError
// is returned.
func Regularise(x [][]float64, f int, strategy RepairStrategy) ([][]float64, error) {
	std := Standardise(x, 1e-8)

	q, err := matrixLog(toDense(std))
	if err != nil {
		return nil, err
	}
	qScaled := toSlice(q)
	for i := range qScaled {
		for j := range qScaled[i] {
			qScaled[i][j] /= float64(f)
		}
	}

	tried := map[RepairStrategy]bool{}
	order := []RepairStrategy{strategy, WA, DA, QO}
	var lastErr error
	for _, s := range order {
		if tried[s] {
			continue
		}
		tried[s] = true

		repaired := repair(qScaled, s)
		p, err := matrixExp(toDense(repaired))
		if err != nil {
			lastErr = err
			continue
		}
		raw := toSlice(p)
		if maxRowSumError(raw) <= rowSumTolerance {
			return Standardise(raw, 0), nil
		}
		lastErr = fmt.Errorf("strategy %v produced row-sum error above tolerance", s)
	}
	return nil, zerr.New(zerr.MatrixRegularisationError, "", "repair", fmt.Errorf("all repair strategies exhausted: %w", lastErr))
}

// AugmentWriteOff appends one absorbing write-off row/column to an N x N
// monthly matrix p, using the default row's time-to-sale and
// probability-of-cure to derive the one-month cure/stay/write-off split:
//
//	mu_w = 1/TTS, mu_c = mu_w*p_c/(1-p_c)
//	s = exp(-(mu_c+mu_w)), c = (1-s)*p_c, w = 1-s-c
//
// defaultState and cureState index into the pre-augmentation N x N
// matrix; the returned matrix is (N+1) x (N+1) with the write-off state
// as the last row/column.
func AugmentWriteOff(p [][]float64, defaultState, cureState int, timeToSale int, probabilityOfCure float64) [][]float64 {
	n := len(p)
	out := make([][]float64, n+1)
	for i := 0; i < n; i++ {
		row := make([]float64, n+1)
		copy(row, p[i])
		out[i] = row
	}

	muW := 1.0 / float64(timeToSale)
	muC := muW * probabilityOfCure / (1 - probabilityOfCure)
	s := math.Exp(-(muC + muW))
	c := (1 - s) * probabilityOfCure
	w := 1 - s - c

	defaultRow := make([]float64, n+1)
	defaultRow[cureState] += c
	defaultRow[defaultState] += s
	defaultRow[n] += w
	out[defaultState] = defaultRow

	woRow := make([]float64, n+1)
	woRow[n] = 1
	out[n] = woRow

	return out
}
