package stage

import (
	"math"
	"testing"
)

func TestBuild_SumsToOne(t *testing.T) {
	cumulativeAt := func(t int) [][]float64 {
		return [][]float64{{0.7, 0.2, 0.09, 0.01}}
	}
	stageIndices := [4][]int{{0}, {1}, {2}, nil}
	probs := Build(cumulativeAt, stageIndices, 3, 0, 0, 0, 5)
	for t_, p := range probs {
		sum := p[0] + p[1] + p[2] + p[3]
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("horizon %d: stage probabilities sum to %v, want 1", t_, sum)
		}
	}
}

func TestBuild_WOMonotonic(t *testing.T) {
	cumulativeAt := func(t int) [][]float64 {
		wo := float64(t) * 0.01
		return [][]float64{{1 - wo, 0, 0, wo}}
	}
	stageIndices := [4][]int{{0}, {1}, {2}, nil}
	probs := Build(cumulativeAt, stageIndices, 3, 0, 0, 0, 10)
	for t_ := 1; t_ < len(probs); t_++ {
		if probs[t_][3] < probs[t_-1][3]-1e-12 {
			t.Errorf("WO probability decreased at horizon %d", t_)
		}
	}
}

func TestBuild_WatchlistOverride(t *testing.T) {
	cumulativeAt := func(t int) [][]float64 {
		return [][]float64{{0.1, 0.1, 0.1, 0.7}}
	}
	stageIndices := [4][]int{{0}, {1}, {2}, nil}
	probs := Build(cumulativeAt, stageIndices, 3, 0, 2, 3, 5)

	for t_ := 0; t_ < 3; t_++ {
		if probs[t_][1] != 1 {
			t.Errorf("horizon %d: expected watchlist stage forced to 1, got %v", t_, probs[t_])
		}
		for s := 0; s < 4; s++ {
			if s != 1 && probs[t_][s] != 0 {
				t.Errorf("horizon %d stage %d: expected 0, got %v", t_, s, probs[t_][s])
			}
		}
	}
	// horizon 3 reverts to the transition-matrix-derived distribution
	if probs[3][0] == 0 {
		t.Errorf("horizon 3 should revert to derived distribution, got %v", probs[3])
	}
}
