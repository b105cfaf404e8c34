package pd

import (
	"math"
	"testing"
)

func TestBuild_MarginalFromConstantHazard(t *testing.T) {
	// A constant monthly transition matrix with a small absorbing default
	// probability should produce a marginal PD curve that declines as the
	// survival pool shrinks, while cumulative PD increases monotonically.
	const h = 0.01
	cumulativeAt := func(t int) [][]float64 {
		c := 1 - math.Pow(1-h, float64(t+1))
		return [][]float64{{1 - c, c}}
	}

	curve := Build(cumulativeAt, 0, 1, 24)

	sum := 0.0
	for _, m := range curve.Marginal {
		if m < -1e-12 {
			t.Errorf("marginal PD should be non-negative, got %v", m)
		}
		sum += m
	}
	if math.Abs(curve.Lifetime[0]-sum) > 1e-9 {
		t.Errorf("lifetime[0] should equal sum of marginals, got %v want %v", curve.Lifetime[0], sum)
	}
}

func TestBuild_HazardZeroWhenSurvivalCollapses(t *testing.T) {
	cumulativeAt := func(t int) [][]float64 {
		return [][]float64{{0, 1}} // fully defaulted from t=0
	}
	curve := Build(cumulativeAt, 0, 1, 3)
	if curve.Hazard[1] != 0 {
		t.Errorf("hazard should be 0 once survival collapses, got %v", curve.Hazard[1])
	}
}

func TestBuild_TwelveMonthWindow(t *testing.T) {
	cumulativeAt := func(t int) [][]float64 {
		c := float64(t+1) * 0.001
		return [][]float64{{1 - c, c}}
	}
	curve := Build(cumulativeAt, 0, 1, 36)
	// 12mPD at t should equal lifetime[t] - lifetime[t+12]
	if math.Abs(curve.TwelveMonth[0]-(curve.Lifetime[0]-curve.Lifetime[12])) > 1e-12 {
		t.Errorf("12mPD mismatch: got %v", curve.TwelveMonth[0])
	}
}
