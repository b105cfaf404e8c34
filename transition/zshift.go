package transition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jiangshenghai57/zmodel/zerr"
)

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

func phi(x float64) float64    { return standardNormal.CDF(x) }
func phiInv(p float64) float64 { return standardNormal.Quantile(p) }

// Method names the TTC->PiT reparameterisation.
type Method string

const (
	ZShift        Method = "METHOD-1"
	DefaultBarrier Method = "METHOD-2"
)

// Series is a time-indexed sequence of (N+1) x (N+1) row-stochastic
// matrices, one per month, plus cached prefix (cumulative) products. The
// write-off row/column is assumed already present (index N).
type Series struct {
	matrices []([][]float64)
	prefix   [][][]float64 // cached P_{0->t}; prefix[0] == matrices[0]
}

// NewSeries wires up a Series and eagerly computes its cumulative prefix
// products, since downstream components (PD, stage probability) request
// the whole prefix and recomputing per-call would repeat the matrix
// multiplications for every horizon.
func NewSeries(matrices [][][]float64) *Series {
	s := &Series{matrices: matrices}
	s.prefix = make([][][]float64, len(matrices))
	for t, m := range matrices {
		if t == 0 {
			s.prefix[0] = m
			continue
		}
		s.prefix[t] = matMul(s.prefix[t-1], m)
	}
	return s
}

// At returns the one-step transition matrix for month t.
func (s *Series) At(t int) [][]float64 { return s.matrices[t] }

// Cumulative returns P_{0->t}, the cumulative product of one-step
// matrices through month t inclusive.
func (s *Series) Cumulative(t int) [][]float64 { return s.prefix[t] }

// Len returns the number of months in the series.
func (s *Series) Len() int { return len(s.matrices) }

func matMul(a, b [][]float64) [][]float64 {
	n := len(a)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += a[i][k] * b[k][j]
			}
			row[j] = sum
		}
		out[i] = row
	}
	return out
}

// BuildUnderZ produces the time-indexed PiT matrix series from the
// augmented monthly TTC matrix p (size (N+1)x(N+1), write-off already the
// last state), asset correlation rho, and the per-month Z series, using
// either METHOD-1 (Z-shift) or METHOD-2 (Default-Barrier). defaultState
// indexes the (pre-augmentation) default rating, which after augmentation
// is the second-to-last row/column (write-off is last).
func BuildUnderZ(p [][]float64, rho float64, z []float64, method Method, calibrated bool, defaultState int) (*Series, error) {
	n := len(p)
	const delta = 1e-8

	cumRow := func(i int) []float64 {
		// C[i,j] = sum_{k>=j} p[i,k]
		c := make([]float64, n)
		running := 0.0
		for j := n - 1; j >= 0; j-- {
			running += p[i][j]
			c[j] = running
		}
		return c
	}

	cum := make([][]float64, n)
	for i := 0; i < n; i++ {
		cum[i] = cumRow(i)
	}

	matrices := make([][][]float64, len(z))

	switch method {
	case ZShift:
		for t, zt := range z {
			denom := 1.0
			if !calibrated {
				denom = math.Sqrt(1 - rho)
			}
			ct := make([][]float64, n)
			for i := 0; i < n; i++ {
				row := make([]float64, n)
				for j := 0; j < n; j++ {
					d := phiInv(cum[i][j])
					row[j] = phi((d - math.Sqrt(rho)*zt) / denom)
				}
				ct[i] = row
			}
			pt, err := diffToTransition(ct, n-1, delta)
			if err != nil {
				return nil, err
			}
			matrices[t] = pt
		}
	case DefaultBarrier:
		// B[i,j] = -Phi^-1(C[i,j]); DD[i] = B[i, default_state] replicated
		b := make([][]float64, n)
		for i := 0; i < n; i++ {
			row := make([]float64, n)
			for j := 0; j < n; j++ {
				row[j] = -phiInv(cum[i][j])
			}
			b[i] = row
		}
		dd := make([]float64, n)
		for i := 0; i < n; i++ {
			dd[i] = b[i][defaultState]
		}
		for t, zt := range z {
			denom := 1.0
			if !calibrated {
				denom = math.Sqrt(1 - rho)
			}
			ct := make([][]float64, n)
			for i := 0; i < n; i++ {
				ddT := (dd[i] + math.Sqrt(rho)*zt) / denom
				row := make([]float64, n)
				for j := 0; j < n; j++ {
					bShifted := b[i][j] - dd[i]
					row[j] = phi(bShifted + ddT)
				}
				ct[i] = row
			}
			pt, err := diffToTransition(ct, n-1, delta)
			if err != nil {
				return nil, err
			}
			matrices[t] = pt
		}
	default:
		return nil, zerr.New(zerr.InvalidConfig, "", "pd.method", fmt.Errorf("unknown method %q", method))
	}

	return NewSeries(matrices), nil
}

// diffToTransition recovers one-step probabilities from a cumulative
// (upper-tail) matrix: P[i,j] = C[i,j] - C[i,j+1], with C[:,N+1] == 0 for
// all rows except the write-off column itself, which is pinned so the WO
// row stays an absorbing [0,...,0,1].
func diffToTransition(c [][]float64, woCol int, delta float64) ([][]float64, error) {
	n := len(c)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n-1; j++ {
			row[j] = c[i][j] - c[i][j+1]
		}
		row[woCol] = c[i][woCol] + delta
		out[i] = row
	}
	// WO row remains a pure absorbing unit vector regardless of the
	// reparameterised cumulative row, since WO has no further transitions.
	woRow := make([]float64, n)
	woRow[woCol] = 1
	out[n-1] = woRow
	return Standardise(out, 0), nil
}
