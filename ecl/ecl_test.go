package ecl

import (
	"math"
	"testing"
	"time"

	"github.com/jiangshenghai57/zmodel/pd"
	"github.com/jiangshenghai57/zmodel/stage"
)

func TestCompose_ECLNonNegativeAndBoundedByExposure(t *testing.T) {
	n := 36
	eirVec := make([]float64, n)
	eadVec := make([]float64, n)
	lgdVec := make([]float64, n)
	for i := 0; i < n; i++ {
		eirVec[i] = 0.005
		eadVec[i] = 100000 - float64(i)*1000
		lgdVec[i] = 0.45
	}

	cumulativeAt := func(tt int) [][]float64 {
		c := 1 - math.Pow(0.999, float64(tt+1))
		return [][]float64{{1 - c, c}}
	}
	pdCurve := pd.Build(cumulativeAt, 0, 1, n)

	stageProbs := make(stage.Probabilities, n)
	for i := range stageProbs {
		stageProbs[i] = [4]float64{0.9, 0.07, 0.02, 0.01}
	}

	curves := Curves{PD: pdCurve, EAD: eadVec, LGD: lgdVec, EIR: eirVec, Stage: stageProbs}
	rows := Compose("C1", 1, "Actual", "base", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), curves)

	if len(rows) != n {
		t.Fatalf("expected %d rows, got %d", n, len(rows))
	}
	for _, r := range rows {
		if r.ECL < -1e-9 {
			t.Errorf("t=%d: ECL should be non-negative, got %v", r.T, r.ECL)
		}
		if r.ECL > r.Exposure+1e-6 {
			t.Errorf("t=%d: ECL %v exceeds exposure %v", r.T, r.ECL, r.Exposure)
		}
	}
}

func TestCompose_SingleAccountDeterministicScenario(t *testing.T) {
	// Constant LGD, CCF=1.0, Z=0, single-rating universe with default
	// absorbing, account wholly in Stage 1: ecl_0 is the 12-month Stage 1
	// sum of mcr_k = outstanding*1.0*0.45*pd_k*df0_k over k < 12, times
	// df_0 = 1.
	const monthlyPD = 0.01
	n := 12
	outstanding := 100000.0

	eirVec := make([]float64, n)
	eadVec := make([]float64, n)
	lgdVec := make([]float64, n)
	for i := range eirVec {
		eirVec[i] = 0.004
		eadVec[i] = outstanding
		lgdVec[i] = 0.45
	}

	cumulativeAt := func(tt int) [][]float64 {
		c := 1 - math.Pow(1-monthlyPD, float64(tt+1))
		return [][]float64{{1 - c, c}}
	}
	pdCurve := pd.Build(cumulativeAt, 0, 1, n)

	stageProbs := make(stage.Probabilities, n)
	for i := range stageProbs {
		stageProbs[i] = [4]float64{1, 0, 0, 0}
	}

	curves := Curves{PD: pdCurve, EAD: eadVec, LGD: lgdVec, EIR: eirVec, Stage: stageProbs}
	rows := Compose("C1", 1, "Actual", "base", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), curves)

	want := 0.0
	for k := 0; k < 12 && k < n; k++ {
		want += outstanding * 1.0 * 0.45 * pdCurve.Marginal[k] * rows[k].DF
	}
	if math.Abs(rows[0].ECL-want) > 1e-6 {
		t.Errorf("got %v want %v", rows[0].ECL, want)
	}
}
