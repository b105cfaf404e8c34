package lgd

import (
	"math"
	"testing"

	"github.com/jiangshenghai57/zmodel/assumptions"
	"github.com/jiangshenghai57/zmodel/scenario"
)

func TestCompute_Constant(t *testing.T) {
	out, err := Compute(assumptions.LGDAssumption{Type: assumptions.LGDConstant, LossGivenDefault: 0.45}, Input{RemainingLife: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range out {
		if v != 0.45 {
			t.Errorf("got %v want 0.45", v)
		}
	}
}

func TestCompute_Unsecured(t *testing.T) {
	a := assumptions.LGDAssumption{Type: assumptions.LGDUnsecured, ProbabilityOfCure: 0.2, LossGivenCure: 0.1, LossGivenWriteOff: 0.8}
	out, _ := Compute(a, Input{RemainingLife: 2})
	want := 0.2*0.1 + 0.8*0.8
	for _, v := range out {
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("got %v want %v", v, want)
		}
	}
}

func TestCompute_Secured_HandCalculation(t *testing.T) {
	sc := scenario.New("base", 1.0, 0, map[string]scenario.Series{
		"HPI": onesVec(100, 1.0),
	})
	n := 24
	eir := make([]float64, n)
	for i := range eir {
		eir[i] = 0.005
	}
	ead := make([]float64, n)
	for i := range ead {
		ead[i] = 100000
	}
	a := assumptions.LGDAssumption{
		Type:               assumptions.LGDSecured,
		Index:              "HPI",
		ForcedSaleDiscount:  0.1,
		SaleCost:            0.05,
		TimeToSale:          12,
		Floor:               0.05,
		ProbabilityOfCure:   0,
	}
	in := Input{EAD: ead, EIR: eir, CollateralValue: 80000, RemainingLife: n, Scenario: sc, StartMonth: 0}
	out, err := Compute(a, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dfTTS := math.Pow(1.005, -12.0)
	want := math.Max((100000-80000*(1-0.1)*(1-0.05)*dfTTS)/100000, 0.05)
	if math.Abs(out[0]-want) > 1e-8 {
		t.Errorf("got %v want %v", out[0], want)
	}
}

func onesVec(n int, v float64) scenario.Series {
	s := make(scenario.Series, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestCompute_UnknownType(t *testing.T) {
	if _, err := Compute(assumptions.LGDAssumption{Type: "BOGUS"}, Input{RemainingLife: 1}); err == nil {
		t.Fatal("expected InvalidConfig error")
	}
}
