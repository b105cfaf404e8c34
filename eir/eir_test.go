package eir

import (
	"math"
	"testing"

	"github.com/jiangshenghai57/zmodel/assumptions"
	"github.com/jiangshenghai57/zmodel/scenario"
)

func TestBuild_Fixed(t *testing.T) {
	out, err := Build(assumptions.Fixed, 12, 0.06, 0, assumptions.EIRAssumption{}, nil, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Pow(1+0.06/12, 12.0/12) - 1
	for t_, v := range out {
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("period %d: got %v want %v", t_, v, want)
		}
	}
}

func TestBuild_Float(t *testing.T) {
	sc := scenario.New("base", 1.0, 0, map[string]scenario.Series{
		"LIBOR": {0.01, 0.02, 0.03},
	})
	out, err := Build(assumptions.Float, 12, 0, 0.02, assumptions.EIRAssumption{BaseRate: "LIBOR"}, sc, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spreadLeg := math.Pow(1+0.02/12, 12.0/12) - 1
	for i, base := range []float64{0.01, 0.02, 0.03} {
		want := spreadLeg + (math.Pow(1+base, 1.0/12) - 1)
		if math.Abs(out[i]-want) > 1e-12 {
			t.Errorf("period %d: got %v want %v", i, out[i], want)
		}
	}
}

func TestBuild_UnknownType(t *testing.T) {
	if _, err := Build("BOGUS", 12, 0, 0, assumptions.EIRAssumption{}, nil, 0, 1); err == nil {
		t.Fatal("expected InvalidConfig error")
	}
}

func TestDiscountFactors(t *testing.T) {
	eirVec := []float64{0.01, 0.01, 0.01}
	df0, df := DiscountFactors(eirVec)
	if math.Abs(df[0]-1.0) > 1e-12 {
		t.Errorf("df[0] should be 1 (relative to itself), got %v", df[0])
	}
	if df0[0] >= 1 {
		t.Errorf("df0[0] should discount below 1, got %v", df0[0])
	}
}
